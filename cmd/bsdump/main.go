// Command bsdump compiles one of a small set of example annotated struct
// types into its type graph and prints the result, for inspecting how `oct`
// struct tags are interpreted without writing a throwaway program.
package main

func main() {
	execute()
}
