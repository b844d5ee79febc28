package main

import (
	"github.com/matheuscscp/groupsplit/cmd"
	_ "github.com/matheuscscp/groupsplit/logging"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logrus.Fatalf("error running bot: %v", err)
	}
}
