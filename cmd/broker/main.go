// Command broker runs the in-memory publish/subscribe broker.
package main

func main() {
	Execute()
}
