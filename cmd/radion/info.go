package main

import (
	"flag"
	"fmt"

	"github.com/dudk/radion/rtltcp"
)

type infoCommand struct {
	server string
}

func (cmd *infoCommand) Name() string {
	return "info"
}

func (cmd *infoCommand) Help() string {
	return "Show the dongle served by an rtl_tcp server"
}

func (cmd *infoCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.server, "server", "127.0.0.1:1234", "rtl_tcp server address")
}

func (cmd *infoCommand) Run() error {
	transport, err := rtltcp.Dial(cmd.server)
	if err != nil {
		return err
	}
	defer transport.Close()

	info := transport.Info()
	fmt.Printf("Server:\t%s\n", cmd.server)
	fmt.Printf("Tuner:\t%s\n", info.TunerType())
	fmt.Printf("Gains:\t%d\n", info.GainCount)
	return nil
}
