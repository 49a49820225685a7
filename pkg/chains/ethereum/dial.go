package ethereum

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Constants for dial retry logic.
const (
	initialRedialDelay = 1 * time.Second
	maxRedialDelay     = 30 * time.Second
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Dial connects to an Ethereum RPC endpoint, retrying with capped
// exponential backoff until it succeeds or ctx is done.
func Dial(ctx context.Context, url string, logger Logger) (*ethclient.Client, error) {
	delay := initialRedialDelay
	for {
		rpcClient, err := rpc.DialContext(ctx, url)
		if err == nil {
			logger.Info("connected to RPC endpoint", "url", url)
			return ethclient.NewClient(rpcClient), nil
		}

		logger.Error("failed to connect to RPC endpoint, will retry...", "error", err, "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > maxRedialDelay {
			delay = maxRedialDelay
		}
	}
}
