// Command cortex is the terminal client for running natural-language
// analysis over local CSV or JSON datasets, either one-shot or as an
// interactive session.
package main

func main() {
	Execute()
}
