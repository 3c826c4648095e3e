package main

import (
	"context"
	"flag"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/fossnova/nio/config"
	"github.com/fossnova/nio/protocol"
	"github.com/fossnova/nio/stat"
)

func main() {
	var cfgFile string
	flag.StringVar(&cfgFile, "c", "./yarp.toml", "config file")
	klog.InitFlags(nil)
	_ = flag.Set("log_dir", "./")
	_ = flag.Set("logtostderr", "false")
	flag.Parse()

	defer klog.Flush()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		klog.Fatal(err)
	}

	stat.GlobalStats.Start(context.Background())
	stat.StartDashboard(cfg.Dashboard)

	eg := errgroup.Group{}

	if len(cfg.TCP) > 0 {
		klog.Info("starting tcp proxy")
		eg.Go(protocol.NewTransportProxy(cfg.TCP).Start)
	}

	if cfg.HTTP != nil {
		klog.Info("starting http proxy")
		eg.Go(protocol.NewHTTPProxy(*cfg.HTTP).Start)
	}

	if cfg.HTTPS != nil {
		klog.Info("starting https proxy")
		eg.Go(protocol.NewHTTPSProxy(*cfg.HTTPS).Start)
	}

	klog.Error(eg.Wait())
}
