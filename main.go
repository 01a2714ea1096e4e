package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"go-dhis2bridge/config"
	"go-dhis2bridge/controllers"
	"go-dhis2bridge/db"
)

func init() {
	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = time.RFC3339
	formatter.FullTimestamp = true
	log.SetFormatter(formatter)
	log.SetOutput(os.Stdout)
}

var splash = `
╺┳┓╻ ╻╻┏━┓┏━┓   ┏┓ ┏━┓╻╺┳┓┏━╸┏━╸
 ┃┃┣━┫┃┗━┓┏━┛   ┣┻┓┣┳┛┃ ┃┃┃╺┓┣╸
╺┻┛╹ ╹╹┗━┛┗━╸   ┗━┛╹┗╸╹╺┻┛┗━┛┗━╸
`

func main() {
	fmt.Printf(splash)
	dbConn, err := sqlx.Connect("postgres", config.BridgeConf.Database.URI)
	if err != nil {
		log.Fatalln(err)
	}
	if err := db.RunMigrations(dbConn); err != nil {
		log.Fatalln(err)
	}
	LoadServers()

	jobs := make(chan Job)
	var wg sync.WaitGroup

	seenMap := make(map[int64]bool)
	mutex := &sync.Mutex{}

	if !*config.SkipSync {
		// don't schedule or produce anything if skip sync is enabled

		go func() {
			s := gocron.NewScheduler(time.UTC)

			log.WithFields(log.Fields{
				"SyncCronExpression":   config.BridgeConf.API.SyncCronExpression,
				"SubmitCronExpression": config.BridgeConf.API.SubmitCronExpression,
			}).Info("Scheduling background sync and submission")
			_, err := s.Cron(config.BridgeConf.API.SyncCronExpression).Do(func() {
				EnqueueAll(dbConn, jobs, mutex, seenMap, TaskSync)
			})
			if err != nil {
				log.WithError(err).Error("Error scheduling sync task:")
			}
			_, err = s.Cron(config.BridgeConf.API.SubmitCronExpression).Do(func() {
				EnqueueAll(dbConn, jobs, mutex, seenMap, TaskSubmit)
			})
			if err != nil {
				log.WithError(err).Error("Error scheduling submission task:")
			}
			s.StartAsync()
		}()

		wg.Add(1)
		go ProduceSyncJobs(dbConn, jobs, &wg, mutex, seenMap)

		StartConsumers(jobs, &wg, mutex, seenMap)
	}

	// Start the backend API gin server
	wg.Add(1)
	go startAPIServer(dbConn, &wg)

	wg.Wait()
}

func startAPIServer(dbConn *sqlx.DB, wg *sync.WaitGroup) {
	defer wg.Done()
	router := gin.Default()
	router.Use(controllers.APIMiddleware(dbConn))
	v1 := router.Group("/api", controllers.TokenAuth())
	{
		v1.GET("/test", func(c *gin.Context) {
			c.String(200, "Authorized")
		})

		s := new(controllers.ServerController)
		v1.POST("/servers", s.CreateServer)
		v1.GET("/servers", s.Servers)
		v1.DELETE("/servers/:id", s.DeleteServer)
		v1.POST("/servers/:id/sync", s.SyncServer)
		v1.POST("/servers/:id/submit", s.SubmitServer)
		v1.GET("/servers/:id/submissions", s.SubmissionLogs)

		d := new(controllers.DataSetController)
		v1.GET("/servers/:id/orgunits", d.OrgUnitsForServer)
		v1.GET("/servers/:id/datasets", d.DataSetsForServer)
		v1.PUT("/datasets/:id/orgunit", d.AssignOrgUnit)

		m := new(controllers.MappingController)
		v1.GET("/servers/:id/mappings", m.MappingsForServer)
		v1.GET("/servers/:id/mappings/export", m.ExportMappings)
		v1.POST("/servers/:id/mappings/import", m.ImportMappings)
		v1.GET("/mappings/:id", m.GetMapping)
		v1.PUT("/mappings/:id", m.UpdateMapping)
		v1.POST("/queries/test", m.TestQuery)
		v1.POST("/queries/preset", m.RenderPreset)
	}
	// Handle error response when a route is not defined
	router.NoRoute(func(c *gin.Context) {
		c.String(404, "Page Not Found!")
	})

	_ = router.Run(":" + fmt.Sprintf("%s", config.BridgeConf.Server.Port))
}
