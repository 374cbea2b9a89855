package async

import (
	"context"
	"errors"
	"fmt"
)

// Task is one named unit of work run by RunParallel.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel starts every task at once and waits for all of them. The
// context handed to the tasks is cancelled as soon as one task fails so
// siblings that honor it can stop early. Every failure is returned, joined,
// each prefixed with its task name.
//
//	tasks := []Task{
//	    {Name: "project", Func: resolveProject},
//	    {Name: "repository", Func: resolveRepository},
//	}
//	if err := RunParallel(ctx, tasks); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	results := make(chan result, len(tasks))

	for _, task := range tasks {
		go func() {
			results <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var errs []error
	for range len(tasks) {
		res := <-results
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.name, res.err))
			cancel()
		}
	}
	return errors.Join(errs...)
}
