package main

import (
	"context"
	"log"
	"reflect"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robotalks/crsf.go/pkg/config"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/telemetry/mqtt"
	"github.com/robotalks/crsf.go/pkg/telemetry/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/crsf/"
	topic   = "#"
)

func init() {
	if val := config.Default().MQTTURL; val != "" {
		mqttURL = val
	}
	pflag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	pflag.StringVarP(&topic, "topic", "t", topic, "Topic pattern under the prefix.")
}

func printMessage(topic string, payload []byte) {
	if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
		log.Printf("%s: %s", topic, string(payload))
		return
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		log.Printf("%s: bad message: %v", topic, err)
		return
	}
	msg, err := typed.Decode()
	if err != nil {
		log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeID, err)
		return
	}
	log.Printf("%s: [%s] %s", topic,
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		msg.(msgs.SerializableMessage).Serializable().String())
}

func main() {
	pflag.Parse()
	log.SetFlags(log.Lmicroseconds)

	opts, prefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := mqtt.NewQueue(opts, prefix)
	q.Subscribe(topic, printMessage)

	runner := fx.NewRunnerWith(context.Background()).HandleSignals()
	runner.Go(q)
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
