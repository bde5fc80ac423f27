package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/attaswift/GlueKit-sub000/observable"
	"github.com/attaswift/GlueKit-sub000/signal"
	"github.com/attaswift/GlueKit-sub000/update"
)

type message struct {
	sender, index int
}

// orderingSink checks that values from each sender arrive in the order
// they were sent.
type orderingSink struct {
	counter prometheus.Counter

	mu        sync.Mutex
	last      map[int]int
	received  int64
	reordered int64
}

func newOrderingSink(counter prometheus.Counter) *orderingSink {
	return &orderingSink{counter: counter, last: map[int]int{}}
}

func (s *orderingSink) Receive(m message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.last[m.sender]; ok && m.index <= prev {
		s.reordered++
	}
	s.last[m.sender] = m.index
	s.received++
	s.counter.Inc()
}

type throughputResult struct {
	stage    string
	senders  int
	sinks    int
	events   int64
	duration time.Duration
	status   string
}

func throughput(ctx context.Context, cmd *cli.Command) error {
	logger, m, report := setup(cmd)
	defer report()

	iters := int(cmd.Uint(iterationsKey))
	senders := int(cmd.Uint(sendersKey))
	sinks := int(cmd.Uint(sinksKey))
	if senders == 0 || sinks == 0 {
		return fmt.Errorf("throughput: need at least one sender and one sink")
	}

	signalResult, err := runSignalStage(ctx, logger, m, iters, senders, sinks)
	if err != nil {
		return fmt.Errorf("throughput: %w", err)
	}
	concatResult, err := runConcatStage(ctx, logger, m, iters)
	if err != nil {
		return fmt.Errorf("throughput: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"stage", "senders", "sinks", "events", "time", "rate/ms", "status"})
	for _, r := range []throughputResult{signalResult, concatResult} {
		rate := float64(r.events) / (float64(r.duration) / float64(time.Millisecond))
		table.Append([]string{
			r.stage,
			fmt.Sprint(r.senders),
			fmt.Sprint(r.sinks),
			humanize.Comma(r.events),
			fmt.Sprint(r.duration),
			humanize.Comma(int64(rate)),
			r.status,
		})
	}
	table.Render()
	return nil
}

func runSignalStage(ctx context.Context, logger *slog.Logger, m *metrics, iters, senders, sinks int) (throughputResult, error) {
	logger.Info("running signal stage", "senders", senders, "sinks", sinks, "iterations", iters)
	s := signal.New[message](nil)
	var connector signal.Connector
	recorders := make([]*orderingSink, sinks)
	for i := range recorders {
		recorders[i] = newOrderingSink(m.deliveries.WithLabelValues(strconv.Itoa(i)))
		connector.Keep(signal.ConnectSink[message](s, recorders[i]))
	}
	defer connector.Disconnect()

	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()
	for sender := 0; sender < senders; sender++ {
		g.Go(func() error {
			for i := 0; i < iters; i++ {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				s.Send(message{sender: sender, index: i})
				m.sends.Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return throughputResult{}, fmt.Errorf("signal stage: %w", err)
	}
	duration := time.Since(start)

	var events int64
	want := int64(iters * senders)
	for i, r := range recorders {
		if r.reordered > 0 {
			return throughputResult{}, fmt.Errorf("signal stage: sink %d saw %d reordered values", i, r.reordered)
		}
		if r.received != want {
			return throughputResult{}, fmt.Errorf("signal stage: sink %d received %d of %d values", i, r.received, want)
		}
		events += r.received
	}
	return throughputResult{
		stage:    "signal",
		senders:  senders,
		sinks:    sinks,
		events:   events,
		duration: duration,
		status:   "ordered",
	}, nil
}

// arrayMirror rebuilds an array from the changes it receives.
type arrayMirror struct {
	elements []int
	changes  prometheus.Counter
}

func (a *arrayMirror) Receive(u update.Update[change.Array[int]]) {
	if u.Kind == update.KindChange {
		a.elements = u.Change.Apply(a.elements)
		a.changes.Inc()
	}
}

func digest(elements []int) uint64 {
	d := xxhash.New()
	var buf []byte
	for _, e := range elements {
		buf = strconv.AppendInt(buf[:0], int64(e), 10)
		buf = append(buf, ',')
		d.Write(buf)
	}
	return d.Sum64()
}

// runConcatStage mutates two arrays at random and checks that a mirror fed
// only with the concatenation's changes matches the brute-force result.
func runConcatStage(ctx context.Context, logger *slog.Logger, m *metrics, iters int) (throughputResult, error) {
	logger.Info("running concat stage", "iterations", iters)
	rng := rand.New(rand.NewSource(1))
	first := observable.NewArrayVariable([]int{}, update.WithName("first"))
	second := observable.NewArrayVariable([]int{}, update.WithName("second"))
	concat := observable.NewConcat[int](first, second, update.WithName("concat"))

	mirror := &arrayMirror{elements: concat.Value(), changes: m.changes.WithLabelValues("concat")}
	conn := signal.ConnectSink[update.Update[change.Array[int]]](concat, mirror)
	defer conn.Disconnect()

	start := time.Now()
	for i := 0; i < iters; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return throughputResult{}, err
			}
		}
		target := first
		if rng.Intn(2) == 0 {
			target = second
		}
		switch n := target.Len(); {
		case n == 0 || rng.Intn(3) == 0:
			target.Insert(i, rng.Intn(n+1))
		case rng.Intn(2) == 0:
			target.RemoveAt(rng.Intn(n))
		default:
			at := rng.Intn(n)
			target.ReplaceRange(at, at+rng.Intn(n-at+1), i, -i)
		}
	}
	duration := time.Since(start)

	want, got := digest(concat.Value()), digest(mirror.elements)
	if want != got {
		return throughputResult{}, fmt.Errorf("concat stage: digest %016x, expected %016x", got, want)
	}
	return throughputResult{
		stage:    "concat",
		senders:  1,
		sinks:    1,
		events:   int64(iters),
		duration: duration,
		status:   fmt.Sprintf("xxhash %016x", got),
	}, nil
}
