// Command estatechat is a terminal client for the real estate analytics service.
package main

import (
	"fmt"
	"os"

	"github.com/diogo/estatechat/internal/commands"
	"github.com/diogo/estatechat/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	commands.Execute()
}
