package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	stepcounter "github.com/Yasindu20/Fitness-Warrior-sub000"
	"github.com/Yasindu20/Fitness-Warrior-sub000/Store"
)

func main() {
	// 1. 解析命令行参数
	modelPath := flag.String("model", "model.json", "Path to the step classifier model")
	replayFile := flag.String("replay", "", "Input CSV file for replay testing")
	recordFile := flag.String("record", "", "Record incoming samples to CSV")
	serialPort := flag.String("serial", "/dev/ttyUSB0", "Serial port of the IMU board")
	baudRate := flag.Int("baud", 115200, "Serial baud rate")
	broker := flag.String("broker", "", "MQTT broker URL (e.g. tcp://localhost:1883)")
	topic := flag.String("topic", "fitness/steps", "MQTT topic for step deltas")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (server-side deployment)")
	debugFile := flag.String("debug", "", "Write per-window signal debug CSV")
	flag.Parse()

	cfg := stepcounter.DefaultConfig()

	// 2. 加载模型 (失败则无法启动)
	model, err := stepcounter.LoadModel(*modelPath)
	if err != nil {
		log.Fatalf("Model load failed: %v", err)
	}

	// 3. 选择存储后端
	var store stepcounter.StepStore
	switch {
	case *broker != "":
		mq, err := Store.NewMqttStore(*broker, *topic)
		if err != nil {
			log.Fatalf("MQTT store init failed: %v", err)
		}
		defer mq.Close()
		store = mq
	case *dsn != "":
		db, err := Store.NewDbStore(*dsn)
		if err != nil {
			log.Fatalf("DB store init failed: %v", err)
		}
		defer db.Close()
		store = db
	default:
		fmt.Println("No broker/dsn given, using in-memory store (totals are lost on exit).")
		store = Store.NewMemoryStore()
	}

	// 4. 选择数据源 (回放文件优先)
	var source stepcounter.SensorSource
	if *replayFile != "" {
		source = stepcounter.NewCsvSampleReader(*replayFile, cfg.Window.SampleRate)
	} else {
		source = stepcounter.NewSerialSensorSource(*serialPort, *baudRate)
	}

	// 5. 组装引擎
	engine, err := stepcounter.NewStepEngine(cfg, model, source, store)
	if err != nil {
		log.Fatalf("Engine init failed: %v", err)
	}

	if *recordFile != "" {
		if err := engine.EnableRecording(*recordFile); err != nil {
			log.Fatalf("Recording init failed: %v", err)
		}
	}
	if *debugFile != "" {
		dbg, err := stepcounter.NewCsvDebugger(*debugFile)
		if err != nil {
			log.Fatalf("Debugger init failed: %v", err)
		}
		engine.SetDebugger(dbg)
	}

	engine.OnStep = func(total int) {
		fmt.Printf("\rSteps: %d ", total)
	}
	engine.OnCadence = func(spm float64) {
		fmt.Printf("\rCadence: %.0f steps/min ", spm)
	}

	// 6. 启动引擎
	if err := engine.Start(); err != nil {
		log.Fatalf("Engine start failed: %v", err)
	}
	defer engine.Stop()

	// 7. 主循环 (处理信号和控制台输入)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Println("Ready. Commands: start | stop | reset | flush | count | exit")
		fmt.Print("> ")

		for scanner.Scan() {
			cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
			switch cmd {
			case "":
			case "start":
				if err := engine.StartCounting(); err != nil {
					fmt.Printf("start: %v\n", err)
				}
			case "stop":
				if err := engine.StopCounting(); err != nil {
					fmt.Printf("stop: %v\n", err)
				}
			case "reset":
				if err := engine.ResetCounters(); err != nil {
					fmt.Printf("reset: %v\n", err)
				}
			case "flush":
				if err := engine.Flush(); err != nil {
					fmt.Printf("flush: %v\n", err)
				}
			case "count":
				fmt.Printf("count: %d (status: %s)\n", engine.CurrentCount(), engine.SessionStatus())
			case "exit", "quit":
				sigChan <- os.Interrupt
				return
			default:
				fmt.Printf("unknown command: %s\n", cmd)
			}
			fmt.Print("> ")
		}
	}()

	// 阻塞等待退出信号
	<-sigChan
	fmt.Println("\nShutting down...")
}
