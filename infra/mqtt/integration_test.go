package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/kilianp07/pvcompare/core/mqtt"
	"github.com/kilianp07/pvcompare/core/scenario"
	"github.com/kilianp07/pvcompare/internal/testutil"
)

func TestPublisherMosquitto(t *testing.T) {
	if !testutil.DockerAvailable() {
		t.Skip("DOCKER_AVAILABLE not set")
	}
	ctx := context.Background()
	broker, cleanup, err := testutil.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto: %v", err)
	}
	defer cleanup()

	received := make(chan coremqtt.Ceiling, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	defer sub.Disconnect(100)
	token := sub.Subscribe("it/ceiling/+", 1, func(_ paho.Client, m paho.Message) {
		var c coremqtt.Ceiling
		if err := json.Unmarshal(m.Payload(), &c); err == nil {
			received <- c
		}
	})
	if token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	p, err := NewPublisher(Config{Broker: broker, TopicPrefix: "it", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer p.Close()
	if err := p.Record(ctx, scenario.PlantRecord{Label: "pv_plant_01", Technology: "cpv", CeilingKWp: 4.2}); err != nil {
		t.Fatalf("record: %v", err)
	}

	select {
	case c := <-received:
		if c.Label != "pv_plant_01" || c.CeilingKWp != 4.2 {
			t.Fatalf("unexpected message %+v", c)
		}
	case <-time.After(testutil.ReadyTimeout):
		t.Fatalf("no ceiling message received")
	}
}
