package main

import (
	"os"

	"klik/internal/bootstrap"
	"klik/internal/cli"
	"klik/internal/log"
	"klik/internal/output"
)

func main() {
	if err := run(); err != nil {
		output.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	log.Configure(log.Config{})

	services, err := bootstrap.Build(cli.NewProgressSink(output.NewFormatter(os.Stdout)))
	if err != nil {
		return err
	}

	deps := &cli.Dependencies{
		Controller:  services.Controller,
		Backend:     services.Backend,
		MeetingInfo: services.MeetingInfo,
		Config:      services.Config,
	}

	return cli.NewRootCmd(deps).Execute()
}
