package base

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/transport"
	"sync"
	"time"
)

// DefaultMaxWorkersPerConn bounds how many messages of one connection are
// handled at the same time
const DefaultMaxWorkersPerConn = 64

// ServeConnection handles incoming messages of one connection until it ends
// or ctx is cancelled. Every message is handled in its own goroutine, so
// responses may leave in a different order than the requests arrived.
func ServeConnection(ctx context.Context, conn Conn, handler transport.ServerHandleFunc, maxWorkersPerConn int) {
	if maxWorkersPerConn < 1 {
		maxWorkersPerConn = DefaultMaxWorkersPerConn
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Create a semaphore to limit concurrent workers for this connection
	// The buffered channel acts as a counting semaphore
	workerSemaphore := make(chan struct{}, maxWorkersPerConn)

	// Create a wait group to wait for all workers to finish
	var wg sync.WaitGroup

	// Create a mutex to protect writes to the connection
	var connMutex sync.Mutex

	// Handler function that processes requests in worker goroutines
	handleMessage := func(data []byte) {
		// When done, release the semaphore and mark worker as done
		defer func() {
			<-workerSemaphore // Release semaphore slot
			wg.Done()         // Mark worker as done
		}()

		// Process the request
		start := time.Now()
		resp := handler(ctx, data)
		Logger.Debugf("Processed message of %d bytes in %s", len(data), time.Since(start))

		// Handlers may decide not to answer at all
		if resp == nil {
			return
		}

		// Protect writes to the connection with a mutex
		connMutex.Lock()
		defer connMutex.Unlock()

		if err := conn.WriteFrame(ctx, resp); err != nil {
			Logger.Warningf("Failed to write response: %v", err)
		}
	}

	// Handle requests in a loop
	for {
		data, err := conn.ReadFrame(ctx)
		if err != nil {
			if isClosedErr(err) {
				Logger.Infof("Connection closed by client")
			} else {
				Logger.Debugf("Connection ended: %v", err)
			}
			break
		}

		// Acquire a slot in the semaphore (blocks if maxWorkersPerConn is reached)
		workerSemaphore <- struct{}{}
		wg.Add(1)
		go handleMessage(data)
	}

	// Stop pending handlers and wait for them before the connection goes away
	cancel()
	wg.Wait()
	_ = conn.Abort()
}
