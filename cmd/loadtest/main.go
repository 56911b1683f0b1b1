package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	natsadapter "github.com/codewandler/lazyref-go/adapters/nats"
	promadapter "github.com/codewandler/lazyref-go/adapters/prometheus"
	"github.com/codewandler/lazyref-go/core/lazyref"
	"github.com/codewandler/lazyref-go/ports/kv"
)

// === Config ===

// NOTE: run nats: docker run --net=host nats:latest -js

var (
	logLevel        = slog.LevelInfo
	numOwners       = getEnvInt("N", 10_000)
	numReads        = getEnvInt("READS", 200_000)
	batchSize       = getEnvInt("B", 20_000)
	payloadSize     = getEnvInt("PAYLOAD", 512)
	gcEvery         = getEnvInt("GC_EVERY", 50_000)
	backendType     = getEnv("BACKEND", "mem")
	promPort        = getEnvInt("PROM_PORT", 2112)
	useSingleflight = getEnvBool("SINGLEFLIGHT", true)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "0")
	if v == "" {
		return fallback
	}
	if v == "1" || strings.ToLower(v) == "true" {
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// === Domain ===

type (
	// Session owns a lazily fetched blob; only the key is held strongly.
	Session struct {
		ID string
	}

	// Blob is the stored value the cache keeps through weak handles.
	Blob struct {
		ID      string
		Payload string
	}
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	fmt.Printf("     Backend: %s\n", backendType)
	fmt.Printf("Singleflight: %s\n", strconv.FormatBool(useSingleflight))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// === metrics ===

	attrMetrics := promadapter.NewAttrMetrics(prometheus.DefaultRegisterer)

	promMux := http.NewServeMux()
	promMux.Handle("/metrics", promhttp.Handler())
	promServer := &http.Server{Addr: fmt.Sprintf(":%d", promPort), Handler: promMux}
	go func() {
		log.Info("prometheus metrics server starting", slog.Int("port", promPort))
		if err := promServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("prometheus server error", slog.Any("error", err))
		}
	}()
	defer promServer.Shutdown(context.Background())

	// === store ===

	var store kv.Store
	switch backendType {
	case "nats":
		s, err := natsadapter.NewStore(natsadapter.StoreConfig{
			Bucket: "loadtest_blobs",
			Log:    log,
		})
		checkErr(err)
		defer s.Close()
		store = s
	default:
		store = kv.NewMemStore()
	}

	// === attribute ===

	var loads atomic.Int64
	fetch := kv.LoaderOf[Session, Blob](store, kv.Key[Session]())

	opts := []lazyref.AttrOption{
		lazyref.WithName("blob"),
		lazyref.WithLog(log),
		lazyref.WithMetrics(attrMetrics),
	}
	if useSingleflight {
		opts = append(opts, lazyref.WithSingleflight())
	}
	blob := lazyref.New[Session, Blob](func(ctx context.Context, o *Session, args lazyref.Args) (*Blob, error) {
		loads.Add(1)
		return fetch(ctx, o, args)
	}, opts...)

	// === seed ===

	log.Info("seeding", slog.Int("owners", numOwners), slog.Int("payload_bytes", payloadSize))

	payload := strings.Repeat("x", payloadSize)
	owners := make([]*Session, numOwners)
	for i := range owners {
		id, err := gonanoid.New()
		checkErr(err)
		checkErr(kv.Put(ctx, store, id, Blob{ID: id, Payload: payload}, kv.PutOptions{}))
		owners[i] = &Session{ID: id}
		checkErr(blob.Bind(owners[i], id))
	}

	// === START ===

	log.Info("==================================")
	log.Info("Starting ...")

	startAt := time.Now()
	lastTime := time.Now()

	for i := 0; i < numReads; i++ {
		o := owners[rand.Intn(len(owners))]
		b, err := blob.Read(ctx, o)
		checkErr(err)
		checkNil(b)

		if gcEvery > 0 && i > 0 && i%gcEvery == 0 {
			runtime.GC()
		}

		if i == 0 {
			continue
		}
		if i%1000 == 0 {
			print(".")
		}
		if i%batchSize == 0 {
			mu := getMemUsage()

			n := time.Now()
			took := n.Sub(lastTime)
			fmt.Printf(" | %6d reads | %6d ms | %7d reads/s | (%d / %d) MiB mem (sys) |\n", batchSize, took.Milliseconds(), int(float64(batchSize)/took.Seconds()), mu.Alloc/1024/1024, mu.Sys/1024/1024)
			lastTime = n
		}
	}

	// === stats ===
	println("")
	println("==========================================")

	doneAt := time.Now()
	took := doneAt.Sub(startAt)
	runtime.GC()

	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("  total reads: %d\n", numReads)
	fmt.Printf(" loader calls: %d\n", loads.Load())
	fmt.Printf("    hit ratio: %.4f\n", 1-float64(loads.Load())/float64(numReads))
	fmt.Printf(" avg. reads/s: %d\n", int(float64(numReads)/took.Seconds()))
}

// === stats helpers ===

type MemUsage struct {
	Alloc      uint64 // bytes allocated and not yet freed (heap)
	TotalAlloc uint64 // cumulative bytes allocated
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

// === Helpers ===

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}

func checkNil(v any) {
	if v == nil {
		panic("nil value")
	}
}
