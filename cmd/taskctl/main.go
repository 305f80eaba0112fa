package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/taskctl"
)

func main() {

	var cmd string
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if taskctl.IsHelp(cmd) {
		fmt.Println(taskctl.Usage)
		return
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := taskctl.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, cmd)
	app.Close()

	if err != nil {
		log.Fatalf("%v", err)
	}

}
