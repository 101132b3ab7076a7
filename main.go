package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/CodedInternet/gotrifan/comms"
	"github.com/CodedInternet/gotrifan/flightlog"
	"github.com/CodedInternet/gotrifan/onboard"
	"github.com/abiosoft/ishell/v2"
	"github.com/caarlos0/env/v6"
	"gopkg.in/natefinch/lumberjack.v2"
)

type EnvConfig struct {
	CONFIG     string `env:"TRIFAN_CONFIG" envDefault:"./trifan.yaml"`
	LOG        string `env:"TRIFAN_LOG" envDefault:"flight.log"`
	ARCHIVE    string `env:"TRIFAN_ARCHIVE"`
	DIAG_LOG   string `env:"TRIFAN_DIAG_LOG" envDefault:"trifan-diag.log"`
	TELEMETRY  string `env:"TRIFAN_TELEMETRY"`
	SECRET     string `env:"TRIFAN_SECRET"`
	JWT_ISSUER string `env:"TRIFAN_ISSUER" envDefault:"trifan"`
	DEBUG      bool   `env:"DEBUG" envDefault:"0"`
}

var (
	ENV *EnvConfig
)

func init() {
	ENV = new(EnvConfig)
	if err := env.Parse(ENV); err != nil {
		log.Fatalf("[env][error] %v", err)
	}
}

// diagnostics tees the process log to stderr and a rotated file.
func diagnostics(filename string, debug bool) io.Writer {
	rotated := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}

	w := io.MultiWriter(os.Stderr, rotated)
	log.SetOutput(w)
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	return w
}

func main() {
	diag := log.New(diagnostics(ENV.DIAG_LOG, ENV.DEBUG), "", log.Flags())

	fmt.Println("Trifan initializing...")

	config, err := onboard.LoadConfig(ENV.CONFIG)
	if err != nil {
		log.Fatalf("[config][error] %s: %v", ENV.CONFIG, err)
	}

	flightLog, err := flightlog.OpenFileLog(ENV.LOG)
	if err != nil {
		log.Fatalf("[flightlog][error] %v", err)
	}
	defer flightLog.Close()
	fmt.Printf("Logging to %s\n", flightLog.Name())

	recorders := flightlog.Fanout{flightLog}
	var history comms.HistorySource
	if ENV.ARCHIVE != "" {
		archive, err := flightlog.OpenArchive(ENV.ARCHIVE)
		if err != nil {
			log.Fatalf("[archive][error] %v", err)
		}
		defer archive.Close()
		recorders = append(recorders, archive)
		history = archive
	}

	actuators := onboard.NewActuators()
	altimeter := onboard.NewAltimeter(onboard.MODE_STABLE, config.Model.InitialAltitude)
	capture := flightlog.Capture(actuators, altimeter)

	simulator := onboard.NewSimulator(actuators, altimeter, config.Airframe(), config.Timing.Simulation)
	status := flightlog.NewStatusLogger(capture, recorders, config.Timing.StatusLog, diag)

	lander := onboard.NewLander(actuators, altimeter, config.Setpoints.Bands, config.Setpoints.Stable, config.Timing.LandingPoll)
	lander.Out = os.Stdout

	conductor := comms.NewConductor(actuators, lander, config, os.Stdout)
	conductor.Simulator = simulator
	conductor.History = history
	conductor.Attach(simulator, status)

	ctx := context.Background()
	simulator.Start(ctx)
	status.Start(ctx)

	var server *http.Server
	if ENV.TELEMETRY != "" {
		broadcaster := comms.NewBroadcaster(capture, config.Timing.Telemetry, diag)
		conductor.Attach(broadcaster)
		broadcaster.Start(ctx)

		server = &http.Server{
			Addr:    ENV.TELEMETRY,
			Handler: NewRouter(capture, history, broadcaster, []byte(ENV.SECRET), diag),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("[telemetry][error] %v", err)
			}
		}()
		log.Printf("[telemetry] listening on %s", ENV.TELEMETRY)

		if len(ENV.SECRET) > 0 {
			token, err := newJWT([]byte(ENV.SECRET), ENV.JWT_ISSUER, "operator")
			if err != nil {
				log.Fatalf("[telemetry][error] %v", err)
			}
			fmt.Printf("Telemetry token: %s\n", token)
		}
	}

	shell := newShell(conductor)
	conductor.PrintHelp()
	shell.Run()
	shell.Close()

	if err := conductor.Shutdown(ctx); err != nil {
		log.Printf("[shutdown][error] %v", err)
	}

	if server != nil {
		sctx, cancel := context.WithTimeout(ctx, comms.SHUTDOWN_TIMEOUT)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			log.Printf("[telemetry][error] %v", err)
		}
	}
}

// newShell registers every operator command. Each command line is handed to
// the conductor whole, so the shell itself holds no flight logic.
func newShell(conductor *comms.Conductor) *ishell.Shell {
	shell := ishell.New()
	shell.SetPrompt("trifan> ")
	shell.AutoHelp(false)
	shell.DeleteCmd("exit")
	shell.DeleteCmd("clear")

	execute := func(c *ishell.Context, line string) {
		// ctrl-c while a command runs, such as a landing, aborts only that command
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := conductor.Execute(ctx, line); err != nil && ENV.DEBUG {
			log.Printf("[shell][error] %s: %v", line, err)
		}

		select {
		case <-conductor.Done():
			c.Stop()
		default:
		}
	}

	for _, cmd := range comms.COMMANDS {
		name := string(cmd.Type)
		shell.AddCmd(&ishell.Cmd{
			Name: name,
			Help: cmd.Help,
			Func: func(c *ishell.Context) {
				execute(c, strings.Join(append([]string{name}, c.Args...), " "))
			},
		})
	}

	shell.NotFound(func(c *ishell.Context) {
		execute(c, strings.Join(c.Args, " "))
	})

	halt := func(c *ishell.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), comms.SHUTDOWN_TIMEOUT)
		defer cancel()
		conductor.Shutdown(ctx)
		c.Stop()
	}
	shell.Interrupt(func(c *ishell.Context, count int, input string) { halt(c) })
	shell.EOF(halt)

	return shell
}

