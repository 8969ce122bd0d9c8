package main

import "github.com/qobs-build/apmbuild/cmd"

func main() {
	cmd.Execute()
}
