/*
Package banktalk is a conversational banking assistant.

It runs two deterministic slot-filling flows, an EMI calculator with an
amortization schedule and a home loan eligibility check, and hands every other
question to a retrieval collaborator. A language model is used only as an
oracle: it extracts fields, judges whether a message answers the pending
question and classifies intent. All arithmetic and all state transitions are
plain code.

# Turn semantics

Each call to Assistant.Chat is one turn against one session:

  - "reset", "clear", "start over", "clear emi" and "clear loan" wipe the flow state.
  - An active flow gets the message first. If the message does not answer its
    pending question the flow is paused.
  - A message that restates an EMI field after an EMI result reopens that
    EMI with the previous values and recomputes.
  - Otherwise the intent router picks a new flow or the retrieval answerer.
    After a retrieval answer the paused flow resumes exactly where it stopped.

# Usage

	oracle := eino.New(chatModel)
	assistant, err := banktalk.New(oracle, banktalk.WithStore(redis.NewFromClient(rdb)))
	if err != nil {
		log.Fatal(err)
	}

	resp, err := assistant.Chat(ctx, "session-123", "What is the EMI for 5 lakh at 9% for 5 years?")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.Reply)

Sessions are serialized per id inside one process. WithLocker adds a
distributed lock for deployments with several replicas sharing a store.
*/
package banktalk
