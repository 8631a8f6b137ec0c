// Command teamfinder はチームファインダーのローカルWebクライアントを起動する。
//
// 使い方:
//
//	teamfinder [--env-file path] [serve|healthcheck|version]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/teamfinder/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "teamfinder: %v\n", err)
		os.Exit(1)
	}
}
