// Command billbeam serves the BillBeam receipt splitter.
package main

func main() {
	Execute()
}
