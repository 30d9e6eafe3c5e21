// Package mqtt publishes the studio's simulation activity to an MQTT broker.
//
// The feed is optional (mqtt.enabled) and lets classroom dashboards or
// other tools follow a running simulation without polling the API.
//
// # Topics
//
// All topics sit under a configurable prefix (default "studio"):
//
//	studio/status                 retained online/offline status (LWT)
//	studio/readings/<instance>    retained latest sensor reading
//	studio/dispatch               every mock HTTP request and its response
//	studio/logs                   the simulation log stream
//	studio/control/{start,stop}   remote start/stop (subscribed)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	feed := mqtt.NewTelemetry(client, client.Topics(), client.QoS())
//	defer feed.Close()
//	scheduler.AddObserver(feed)
//	store.SetLogHook(feed.PublishLog)
//
//	err = client.Subscribe(client.Topics().AllControl(), 1, mqtt.ControlHandler(scheduler))
//
// # Thread Safety
//
// Client and Telemetry are safe for concurrent use. Telemetry publishes
// from a single goroutine, so messages keep the order they were queued in.
package mqtt
