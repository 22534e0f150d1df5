package main

import (
	"context"

	"pmabackup/cmd/pmabackup/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
