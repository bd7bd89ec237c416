// Package testutil starts disposable Docker services for integration tests.
//
// Every helper returns the address of the service together with a cleanup
// function. Tests calling them should first check DockerAvailable.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/go-connections/nat"
	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// ReadyTimeout bounds the readiness probe of a started container.
	ReadyTimeout = 10 * time.Second

	pollInterval = 50 * time.Millisecond
)

// DockerAvailable reports whether DOCKER_AVAILABLE is set to true or 1.
func DockerAvailable() bool {
	v := os.Getenv("DOCKER_AVAILABLE")
	return v == "true" || v == "1"
}

func start(ctx context.Context, req tc.ContainerRequest, port string) (tc.Container, string, func(), error) {
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return nil, "", nil, err
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }
	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	mapped, err := cont.MappedPort(ctx, nat.Port(port))
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	return cont, fmt.Sprintf("%s:%s", host, mapped.Port()), cleanup, nil
}

// StartMosquitto launches a temporary Mosquitto broker and returns its
// broker URL along with a cleanup function.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`
	dir, err := os.MkdirTemp("", "mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0644,
		}},
	}
	_, addr, stop, err := start(ctx, req, "1883")
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	cleanup := func() {
		stop()
		_ = os.RemoveAll(dir)
	}
	broker := "tcp://" + addr

	waitCtx, cancel := context.WithTimeout(ctx, ReadyTimeout)
	defer cancel()
	if err := waitForMQTTReady(waitCtx, broker); err != nil {
		cleanup()
		return "", nil, err
	}
	return broker, cleanup, nil
}

func waitForMQTTReady(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// StartValkey launches a Valkey server and returns host:port.
func StartValkey(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "valkey/valkey:8",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}
	_, addr, cleanup, err := start(ctx, req, "6379")
	return addr, cleanup, err
}

// MinioCredentials are the root credentials of StartMinio.
const (
	MinioAccessKey = "minioadmin"
	MinioSecretKey = "minioadmin"
)

// StartMinio launches a MinIO server and returns its http endpoint.
func StartMinio(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinioAccessKey,
			"MINIO_ROOT_PASSWORD": MinioSecretKey,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	}
	_, addr, cleanup, err := start(ctx, req, "9000")
	if err != nil {
		return "", nil, err
	}
	return "http://" + addr, cleanup, nil
}
