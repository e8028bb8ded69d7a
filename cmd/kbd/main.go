package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/splitkbd/pkg/env"
	fx "github.com/robotalks/splitkbd/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	e := env.NewConfig().MustNewEnv()
	defer e.Close()
	glog.Infof("keyboard %s started", e)

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NewLoop().Add(e))
	if err := runner.Wait(); err != nil {
		glog.Error(err)
	}
}
