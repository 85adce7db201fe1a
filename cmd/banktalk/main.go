// Command banktalk runs the banking assistant as a terminal chat, an HTTP
// API or an MCP server, and builds the product document index.
package main

func main() {
	Execute()
}
