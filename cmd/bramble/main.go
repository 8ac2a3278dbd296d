package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dukerupert/bramble/internal/activity"
	"github.com/dukerupert/bramble/internal/database"
	"github.com/dukerupert/bramble/internal/generate"
	"github.com/dukerupert/bramble/internal/logging"
	"github.com/dukerupert/bramble/internal/points"
	"github.com/dukerupert/bramble/internal/push"
	"github.com/dukerupert/bramble/internal/scheduler"
	"github.com/dukerupert/bramble/internal/server"
	"github.com/dukerupert/bramble/internal/settlement"
	"github.com/dukerupert/bramble/internal/store"
	"github.com/dukerupert/bramble/internal/websocket"
)

func main() {
	logger := logging.Setup(os.Getenv("BRAMBLE_LOG_LEVEL"), os.Getenv("BRAMBLE_LOG_FORMAT"))

	port := os.Getenv("BRAMBLE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("BRAMBLE_DB_PATH")
	if dbPath == "" {
		dbPath = "bramble.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	hub := websocket.NewHub(logger.With("component", "websocket"))
	events := websocket.NewEvents(hub)

	memberStore := store.NewFamilyMemberStore(db)
	scheduleStore := store.NewScheduleStore(db)
	taskStore := store.NewTaskStore(db)
	goalStore := store.NewGoalStore(db)
	pointStore := store.NewPointStore(db)
	activityStore := store.NewActivityStore(db)
	pushStore := store.NewPushStore(db)

	// Push is optional: without VAPID keys the app runs with notifications off.
	var pushSvc *push.Service
	var notifier *push.Dispatcher
	vapidPublic := os.Getenv("BRAMBLE_VAPID_PUBLIC_KEY")
	vapidPrivate := os.Getenv("BRAMBLE_VAPID_PRIVATE_KEY")
	if vapidPublic != "" && vapidPrivate != "" {
		pushSvc = push.NewService(vapidPublic, vapidPrivate)
		notifier = push.NewDispatcher(pushSvc, pushStore, logger.With("component", "push"))
	} else {
		logger.Info("push notifications disabled, set BRAMBLE_VAPID_PUBLIC_KEY and BRAMBLE_VAPID_PRIVATE_KEY to enable")
	}

	// A nil *Dispatcher must stay a nil interface for the services' checks.
	var pointsNotifier points.Notifier
	var settleNotifier settlement.Notifier
	if notifier != nil {
		pointsNotifier = notifier
		settleNotifier = notifier
	}

	pointsSvc := points.New(pointStore, pointsNotifier, logger.With("component", "points"))
	activitySvc := activity.New(activityStore)

	generator := generate.NewRunner(scheduleStore, taskStore, events, logger.With("component", "generate"))
	settler := settlement.NewRunner(goalStore, pointsSvc, activitySvc, settleNotifier, events, logger.With("component", "settlement"))

	weekStartDay := parseWeekday(os.Getenv("BRAMBLE_WEEK_START"), time.Monday)
	sched := scheduler.New(generator, settler, weekStartDay, logger.With("component", "scheduler"))
	sched.Start(context.Background())
	defer sched.Stop()

	srv := server.New(db, hub, memberStore, scheduleStore, taskStore, goalStore, pushStore, pointsSvc, activitySvc, pushSvc, generator, settler, weekStartDay, logger.With("component", "http"))

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("bramble running", "addr", "http://localhost:"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func parseWeekday(s string, fallback time.Weekday) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	case "":
		return fallback
	default:
		return fallback
	}
}
