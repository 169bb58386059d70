package main

import "github.com/HaiFongPan/gdrive-picker/cmd"

func main() {
	cmd.Execute()
}
