package main

import (
	"flag"

	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/router"
	"github.com/ctvbid/ctvbid/server"

	"github.com/golang/glog"
	"github.com/spf13/viper"
)

// Rev and Ver hold the binary revision and release tag.
// Set at build time using:
//
//	go build -ldflags "-X main.Rev=`git rev-parse --short HEAD` -X main.Ver=`git describe --tags`"
var (
	Rev string
	Ver string
)

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	err = serve(Ver, Rev, cfg)
	if err != nil {
		glog.Exitf("ctvbid failed: %v", err)
	}
}

const configFileName = "ctvbid"

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

func serve(version, revision string, cfg *config.Configuration) error {
	r, err := router.New(cfg)
	if err != nil {
		return err
	}

	corsRouter := router.SupportCORS(r)
	return server.Listen(cfg, router.NoCache{Handler: corsRouter}, router.Admin(cfg, version, revision), r.MetricsEngine)
}
