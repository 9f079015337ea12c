package systems

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
)

/**
 * @brief A unit of background work. Run executes on a worker goroutine; exactly one
 * of OnComplete or OnFailure runs afterwards on the goroutine calling Update.
 */
type JobTask struct {
	Name       string
	Run        func() (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	// sendMutex guards closed and keeps Shutdown from closing the queue under a sender.
	sendMutex sync.RWMutex
	closed    bool

	mutex   sync.Mutex
	results []jobResult
	pending int
}

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system already shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := js.run(job)
				if err != nil {
					core.LogError("job '%s' failed: %s", job.Name, err)
				}
				js.mutex.Lock()
				js.results = append(js.results, jobResult{task: job, result: result, err: err})
				js.mutex.Unlock()
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("job '%s' panicked: %v", job.Name, r)
		}
	}()
	if job.Run == nil {
		return nil, nil
	}
	return job.Run()
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their callbacks are
 * dispatched before Shutdown returns.
 */
func (js *JobSystem) Shutdown() error {
	js.sendMutex.Lock()
	if js.closed {
		js.sendMutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.sendMutex.Unlock()

	js.wg.Wait()
	js.Update()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle. Runs the
 * completion callbacks of every finished job on the calling goroutine.
 */
func (js *JobSystem) Update() {
	js.mutex.Lock()
	results := js.results
	js.results = nil
	js.pending -= len(results)
	js.mutex.Unlock()

	for _, r := range results {
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
			continue
		}
		if r.task.OnComplete != nil {
			r.task.OnComplete(r.result)
		}
	}
}

// Pending returns how many submitted jobs have not had their callbacks dispatched yet.
func (js *JobSystem) Pending() int {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	return js.pending
}

// AddWorkNonBlocking queues the job from a new goroutine and returns immediately.
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	go func() {
		if err := js.Submit(jt); err != nil {
			core.LogWarn(err.Error())
		}
	}()
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the
 * queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.sendMutex.RLock()
	defer js.sendMutex.RUnlock()
	if js.closed {
		return errors.Wrapf(ErrJobSystemClosed, "submitting job '%s'", jt.Name)
	}
	js.mutex.Lock()
	js.pending++
	js.mutex.Unlock()
	js.jobQueue <- jt
	return nil
}
