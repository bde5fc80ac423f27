package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/attaswift/GlueKit-sub000/observable"
	"github.com/attaswift/GlueKit-sub000/reflist"
	"github.com/attaswift/GlueKit-sub000/update"
)

type item struct {
	reflist.Link[*item]
	id int
}

func (i *item) RefListLink() *reflist.Link[*item] {
	return &i.Link
}

type latencyBenchmark struct {
	name string
	// prepare builds the fixture for size n and returns the measured
	// operation.
	prepare func(n int, rng *rand.Rand) func() error
}

func latency(ctx context.Context, cmd *cli.Command) error {
	logger, m, report := setup(cmd)
	defer report()

	sizes, err := parseSizes(cmd.String(sizesKey))
	if err != nil {
		return fmt.Errorf("latency: %w", err)
	}
	iters := int(cmd.Uint(iterationsKey))
	order := int(cmd.Uint(orderKey))
	if order < 3 {
		return fmt.Errorf("latency: order %d is below 3", order)
	}

	benchmarks := []latencyBenchmark{
		{name: "reflist insert/index/remove", prepare: func(n int, rng *rand.Rand) func() error {
			return benchmarkRefList(n, order, rng)
		}},
		{name: "array change add", prepare: benchmarkArrayChange},
		{name: "concat+mapfield propagate", prepare: func(n int, rng *rand.Rand) func() error {
			return benchmarkDerivedArrays(n, rng, logger, m)
		}},
		{name: "set insert/delete", prepare: func(n int, rng *rand.Rand) func() error {
			return benchmarkSet(n, rng, m)
		}},
	}

	tbl := table.NewWriter()
	tbl.SetTitle("GlueKit latency")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, b := range benchmarks {
		for _, n := range sizes {
			if err := ctx.Err(); err != nil {
				return err
			}
			logger.Info("running", "benchmark", b.name, "size", n)
			rng := rand.New(rand.NewSource(int64(n)))
			calc, err := measure(b.prepare(n, rng), iters, m.operations.WithLabelValues(b.name))
			if err != nil {
				return fmt.Errorf("latency: %s: %d: %w", b.name, n, err)
			}
			tbl.AppendRow(table.Row{
				fmt.Sprintf("%s: %d", b.name, n),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			})
		}
	}
	tbl.Render()
	return nil
}

// measure runs op iters times, stopping at the first error.
func measure(op func() error, iters int, observer prometheus.Observer) (*tachymeter.Metrics, error) {
	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		err := op()
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i, err)
		}
		tach.AddTime(elapsed)
		observer.Observe(elapsed.Seconds())
	}
	return tach.Calc(), nil
}

func benchmarkRefList(n, order int, rng *rand.Rand) func() error {
	l := reflist.New[*item](reflist.WithOrder(order))
	for i := 0; i < n; i++ {
		l.Append(&item{id: i})
	}
	next := n
	return func() error {
		e := &item{id: next}
		next++
		at := rng.Intn(l.Len() + 1)
		l.Insert(at, e)
		if index := l.IndexOf(e); index != at {
			return fmt.Errorf("element inserted at %d found at %d", at, index)
		}
		l.Remove(rng.Intn(l.Len()))
		return nil
	}
}

// benchmarkArrayChange grows one change by a random modification per
// operation, starting from an array of n elements.
func benchmarkArrayChange(n int, rng *rand.Rand) func() error {
	c := change.NewArray[int](n)
	next := 0
	return func() error {
		final := c.FinalCount()
		next++
		switch {
		case final == 0 || rng.Intn(3) == 0:
			c.Add(change.Insert(next, rng.Intn(final+1)))
		case rng.Intn(2) == 0:
			c.Add(change.Remove(next, rng.Intn(final)))
		default:
			c.Add(change.Replace(-next, rng.Intn(final), next))
		}
		return nil
	}
}

// benchmarkDerivedArrays measures one mutation of an element variable or of
// the source arrays, propagated through Concat and MapField to a sink.
func benchmarkDerivedArrays(n int, rng *rand.Rand, logger *slog.Logger, m *metrics) func() error {
	newVariables := func(count int) []*observable.Variable[int] {
		vars := make([]*observable.Variable[int], count)
		for i := range vars {
			vars[i] = observable.NewVariable(i, update.WithLogger(logger))
		}
		return vars
	}
	first := observable.NewArrayVariable(newVariables(n/2), update.WithName("first"), update.WithLogger(logger))
	second := observable.NewArrayVariable(newVariables(n-n/2), update.WithName("second"), update.WithLogger(logger))
	concat := observable.NewConcat[*observable.Variable[int]](first, second, update.WithName("concat"), update.WithLogger(logger))
	values := observable.NewMapField(concat, func(v *observable.Variable[int]) observable.Value[int] {
		return v
	}, update.WithName("values"), update.WithLogger(logger))

	changes := m.changes.WithLabelValues("values")
	values.Add(&countingSink[change.Array[int]]{counter: changes})

	return func() error {
		target := first
		if rng.Intn(2) == 0 {
			target = second
		}
		switch count := target.Len(); {
		case rng.Intn(10) == 0:
			target.Insert(observable.NewVariable(rng.Int(), update.WithLogger(logger)), rng.Intn(count+1))
		case count > 0 && rng.Intn(10) == 0:
			target.RemoveAt(rng.Intn(count))
		case count > 0:
			target.At(rng.Intn(count)).Update(func(v int) int { return v + 1 })
		}
		if values.Len() != concat.Len() {
			return fmt.Errorf("mapped %d elements of %d", values.Len(), concat.Len())
		}
		return nil
	}
}

func benchmarkSet(n int, rng *rand.Rand, m *metrics) func() error {
	elements := make([]int, n)
	for i := range elements {
		elements[i] = i
	}
	s := observable.NewSetVariable(elements)
	s.Add(&countingSink[change.Set[int]]{counter: m.changes.WithLabelValues("set")})
	next := n
	return func() error {
		s.Batch(func() {
			s.Insert(next)
			s.Delete(rng.Intn(next))
		})
		next++
		return nil
	}
}

type countingSink[C any] struct {
	counter interface{ Inc() }
}

func (s *countingSink[C]) Receive(u update.Update[C]) {
	if u.Kind == update.KindChange {
		s.counter.Inc()
	}
}
