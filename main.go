package main

import (
	"log"
	"time"

	"TaskTracker/Connectivity"
	"TaskTracker/CronJobs"
	"TaskTracker/FiberConfig"
	"TaskTracker/Models"
	"TaskTracker/Storage"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment")
	}

	Models.Connect()

	if err := Storage.InitFirebase(); err != nil {
		log.Printf("Photo uploads disabled: %v", err)
	}

	// Watch backend reachability; the session resolver and photo uploads
	// degrade while offline.
	Connectivity.Default = Connectivity.NewMonitor(func() error {
		db, err := Models.DB.DB()
		if err != nil {
			return err
		}
		return db.Ping()
	}, time.Minute)
	Connectivity.Default.Subscribe(func(online bool) {
		if online {
			log.Println("Serving fresh data again")
		} else {
			log.Println("Falling back to cached sessions until the backend returns")
		}
	})
	Connectivity.Default.Start()

	resetter, err := CronJobs.NewTaskResetter(Models.DB)
	if err != nil {
		log.Fatal("Failed to create task resetter:", err)
	}
	if err := resetter.Start(); err != nil {
		log.Fatal("Failed to start task resetter:", err)
	}

	FiberConfig.FiberConfig(resetter)
}
