package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

type Job interface {
	Name() string
	Run()
}

type CronJob interface {
	Schedule() string
	Job
}

// TaskExecutor runs jobs once on start and cron jobs on their schedule. A job
// never overlaps with a still running instance of itself.
type TaskExecutor struct {
	cron     *cron.Cron
	jobs     []Job
	cronJobs []CronJob
	running  mapset.Set[string]
	mu       sync.Mutex
	wg       sync.WaitGroup
}

func NewTaskExecutor(jobs []Job, cronJobs []CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:     cron.New(),
		jobs:     jobs,
		cronJobs: cronJobs,
		running:  mapset.NewThreadUnsafeSet[string](),
	}
}

// Run schedules the cron jobs and starts the one shot jobs, each in its own goroutine.
func (t *TaskExecutor) Run() error {
	for _, job := range t.cronJobs {
		err := t.cron.AddFunc(job.Schedule(), func() {
			t.run(job)
		})
		if err != nil {
			logrus.Errorf("failed to add task %s to cron: %v", job.Name(), err)
			return err
		}
		logrus.Infof("scheduled task %s at %q", job.Name(), job.Schedule())
	}

	for _, job := range t.jobs {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.run(job)
		}()
	}

	t.cron.Start()

	return nil
}

func (t *TaskExecutor) run(job Job) {
	t.mu.Lock()
	if t.running.Contains(job.Name()) {
		t.mu.Unlock()
		logrus.Warnf("task %s is already running", job.Name())
		return
	}
	t.running.Add(job.Name())
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.running.Remove(job.Name())
	}()

	job.Run()
}

// Stop stops scheduling and waits for the one shot jobs.
func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()
	t.wg.Wait()
}
