package cmd

import (
	"context"
	"fmt"

	"github.com/corey/chatmon/internal/adapters/socket"
	"github.com/corey/chatmon/internal/app"
)

// daemonQueries adapts a socket client to socket.AppQueries so commands can
// treat the daemon and an in-process App the same way.
type daemonQueries struct {
	client *socket.Client
}

func (d daemonQueries) Ask(ctx context.Context, query string) (socket.AskResult, error) {
	r, err := d.client.Ask(query)
	if err != nil {
		return socket.AskResult{}, err
	}
	return *r, nil
}

func (d daemonQueries) Health() socket.HealthResult {
	h, err := d.client.Health()
	if err != nil {
		return socket.HealthResult{Status: "unreachable: " + err.Error()}
	}
	return *h
}

func (d daemonQueries) LookupStats(top int) (socket.StatsResult, error) {
	r, err := d.client.Stats(top)
	if err != nil {
		return socket.StatsResult{}, err
	}
	return *r, nil
}

func (d daemonQueries) Unanswered(limit int) (socket.UnansweredResult, error) {
	r, err := d.client.Unanswered(limit)
	if err != nil {
		return socket.UnansweredResult{}, err
	}
	return *r, nil
}

func (d daemonQueries) Reload(ctx context.Context) (socket.ReloadResult, error) {
	r, err := d.client.Reload()
	if err != nil {
		return socket.ReloadResult{}, err
	}
	return *r, nil
}

// connect returns the running daemon when there is one and an in-process
// App otherwise. An explicit --dataset always resolves in-process. The
// returned close func must be called when done.
func connect(root string) (q socket.AppQueries, viaDaemon bool, closeFn func(), err error) {
	client := socket.NewClient(socket.SocketPath(root))
	if datasetFlag == "" && client.Ping() {
		return daemonQueries{client: client}, true, func() {}, nil
	}

	a, err := app.New(app.Config{ProjectRoot: root, Settings: settings})
	if err != nil {
		if isDBLockError(err) {
			return nil, false, nil, fmt.Errorf("%s", diagnoseDBLock(root))
		}
		return nil, false, nil, err
	}
	return a, false, func() { a.Close() }, nil
}
