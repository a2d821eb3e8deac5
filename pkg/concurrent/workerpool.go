// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work run by the pool. The context is cancelled when a
// sibling task fails under Run.
type Task func(ctx context.Context) error

// WorkerPool represents a pool of workers that can process jobs concurrently
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// Size returns the maximum number of tasks running at once.
func (wp *WorkerPool) Size() int {
	return wp.workerCount
}

// Run executes all tasks with at most Size of them in flight.
// It returns the first error encountered and cancels the remaining work.
func (wp *WorkerPool) Run(ctx context.Context, tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, task := range tasks {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return task(groupCtx)
		})
	}

	return g.Wait()
}

// RunAll executes every task without cancelling on error and returns the
// non-nil errors in task order.
func (wp *WorkerPool) RunAll(ctx context.Context, tasks ...Task) []error {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]error, len(tasks))

	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = err
				return nil
			}
			results[i] = task(ctx)
			return nil
		})
	}

	// tasks never return errors to the group, so Wait is always nil
	_ = g.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Map applies fn to every item on the pool and returns the results in input
// order. The first error cancels the remaining calls and is returned.
func Map[T, R any](ctx context.Context, wp *WorkerPool, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))

	tasks := make([]Task, 0, len(items))
	for i, item := range items {
		tasks = append(tasks, func(ctx context.Context) error {
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := wp.Run(ctx, tasks...); err != nil {
		return nil, err
	}
	return results, nil
}
