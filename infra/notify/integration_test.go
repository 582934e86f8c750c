package notify

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/brewline/maitre/core/events"
)

// TestIntegration publishes an offer through a real Mosquitto broker and
// verifies a subscribed staff device receives it.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	// give broker time to fully start
	time.Sleep(500 * time.Millisecond)

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	device := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("device"))
	if token := device.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("device connect: %v", token.Error())
	}
	defer device.Disconnect(250)

	msgCh := make(chan []byte, 1)
	if token := device.Subscribe("brewline/staff/w1/offer", 0, func(_ paho.Client, m paho.Message) {
		msgCh <- m.Payload()
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("device subscribe: %v", token.Error())
	}

	var n *Notifier
	for i := 0; i < 5; i++ {
		n, err = New(Config{Enabled: true, Broker: broker, ClientID: "maitre-it"}, nil)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect notifier: %v", err)
	}
	defer n.Disconnect()

	n.Publish(events.OfferMade{
		AssignmentID: "asg-it",
		CandidateID:  "w1",
		Task:         testTask(),
		Deadline:     time.Now().Add(10 * time.Second),
	})

	select {
	case got := <-msgCh:
		if len(got) == 0 {
			t.Fatal("empty payload")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for offer")
	}
}
