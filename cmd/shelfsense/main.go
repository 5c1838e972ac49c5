// Command shelfsense runs the relocation intelligence engine from the command
// line: it computes insights, scores products and zones, plans relocations and
// answers lookups against the generated tables and the decision log.
package main

func main() {
	Execute()
}
