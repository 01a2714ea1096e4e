package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"go-dhis2bridge/config"
	"go-dhis2bridge/models"
)

// TaskSync and TaskSubmit are the two pieces of background work a
// server can be queued for
const (
	TaskSync   = "sync"
	TaskSubmit = "submit"
)

// Job identifies one unit of background work. The seen map is keyed by
// server id, so a server has at most one job in flight regardless of
// task: sync and submission of the same server never run concurrently.
type Job struct {
	ServerID int64
	Task     string
}

const dueServersSQL = `
SELECT id FROM servers
WHERE sync_time IS NULL OR sync_time < NOW() - make_interval(secs => $1)
ORDER BY id ASC
`

// EnqueueJob queues work for a server unless the same job is already
// in the dynamic queue
func EnqueueJob(jobs chan<- Job, mutex *sync.Mutex, seenMap map[int64]bool, job Job) {
	mutex.Lock()
	if seenMap[job.ServerID] {
		mutex.Unlock()
		log.WithFields(log.Fields{"serverID": job.ServerID, "task": job.Task}).Info(
			"Job already in dynamic queue")
		return
	}
	seenMap[job.ServerID] = true
	mutex.Unlock()
	jobs <- job
}

// EnqueueAll queues the given task for every known server. Used by the
// cron triggers.
func EnqueueAll(db *sqlx.DB, jobs chan<- Job, mutex *sync.Mutex, seenMap map[int64]bool, task string) {
	for _, server := range models.ListServers(db) {
		EnqueueJob(jobs, mutex, seenMap, Job{ServerID: server.ID, Task: task})
	}
}

// ProduceSyncJobs polls for servers whose last sync is older than the
// configured interval and queues a sync for each
func ProduceSyncJobs(db *sqlx.DB, jobs chan<- Job, wg *sync.WaitGroup, mutex *sync.Mutex, seenMap map[int64]bool) {
	defer wg.Done()
	log.Info("..:::.. Starting to produce due sync jobs..:::..")

	for {
		var serverIDs []int64
		err := db.Select(&serverIDs, dueServersSQL, config.BridgeConf.Server.SyncInterval)
		if err != nil {
			log.WithError(err).Error("Error reading due servers")
		}
		for _, serverID := range serverIDs {
			EnqueueJob(jobs, mutex, seenMap, Job{ServerID: serverID, Task: TaskSync})
		}
		if len(serverIDs) > 0 {
			log.WithField("serversDue", len(serverIDs)).Info("Fetched due servers")
		}

		time.Sleep(time.Duration(config.BridgeConf.Server.JobQueueInterval) * time.Second)
	}
}

// ConsumeJobs processes queued jobs one at a time
func ConsumeJobs(db *sqlx.DB, jobs <-chan Job, wg *sync.WaitGroup, mutex *sync.Mutex, seenMap map[int64]bool) {
	defer wg.Done()
	for job := range jobs {
		ProcessJob(db, job)
		mutex.Lock()
		delete(seenMap, job.ServerID)
		log.WithFields(log.Fields{
			"serverID":      job.ServerID,
			"task":          job.Task,
			"seenMapLength": len(seenMap),
		}).Info("Consumer done with job.")
		mutex.Unlock()
	}
}

// ProcessJob runs one sync or submission pass for a server
func ProcessJob(db *sqlx.DB, job Job) {
	log.WithFields(log.Fields{"serverID": job.ServerID, "task": job.Task}).Info("Processing job")
	server, err := models.GetServer(db, job.ServerID)
	if err != nil {
		log.WithError(err).WithField("serverID", job.ServerID).Error("Failed to fetch server")
		return
	}
	client, err := server.NewClient()
	if err != nil {
		log.WithError(err).WithField("server", server.Name).Error("Cannot build client for server")
		return
	}

	switch job.Task {
	case TaskSync:
		if err := models.NewSyncer(db, client).SyncServer(&server); err != nil {
			log.WithError(err).WithField("server", server.Name).Error("Sync pass failed")
		}
	case TaskSubmit:
		report := models.NewSubmitter(db, client).SubmitAll(&server, false)
		if failed := report.Failed(); len(failed) > 0 {
			log.WithFields(log.Fields{
				"server": server.Name,
				"failed": len(failed),
			}).Warn("Submission batch had failures")
		}
	default:
		log.WithField("task", job.Task).Error("Unknown job task")
	}
}

// StartConsumers starts the configured number of job consumers, each
// with its own database connection
func StartConsumers(jobs <-chan Job, wg *sync.WaitGroup, mutex *sync.Mutex, seenMap map[int64]bool) {
	dbURI := config.BridgeConf.Database.URI
	numConsumers := 0
	for i := 1; i <= config.BridgeConf.Server.MaxConcurrent; i++ {
		newConn, err := sqlx.Connect("postgres", dbURI)
		if err != nil {
			log.WithError(err).Error("Job processor failed to connect to database")
		} else {
			log.Info(fmt.Sprintf("Adding Job Consumer: %d\n", i))
			wg.Add(1)
			go ConsumeJobs(newConn, jobs, wg, mutex, seenMap)
			numConsumers++
		}
	}
	if numConsumers == 0 {
		log.Fatalln("Job processor failed to connect to database for any of the consumers")
	}
	log.Info(fmt.Sprintf("Created %d job consumers", numConsumers))
}
