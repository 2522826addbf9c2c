package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/wm"
	"github.com/1broseidon/stackwm/internal/x11"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
		printUsage(os.Stdout)
		return 0
	}
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "stackwm takes at most one argument")
		fmt.Fprintln(os.Stderr, "")
		printUsage(os.Stderr)
		return 2
	}
	if len(args) == 1 {
		return sendCommand(args[0])
	}
	return runManager()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: stackwm [command]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Without arguments, stackwm starts managing windows.")
	fmt.Fprintln(w, "With one argument, the token is sent to a running instance:")
	fmt.Fprintln(w, "  last    raise the window below the top of the stack")
	fmt.Fprintln(w, "  close   close the focused window")
	fmt.Fprintln(w, "  quit    stop the running manager")
}

// sendCommand delivers a remote token through the root-window mailbox
// and exits without starting a manager instance.
func sendCommand(token string) int {
	sess, err := x11.Connect()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.Close()

	if err := sess.SendCommand(token); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runManager() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	log.Printf("Configuration loaded (border: %dpx)", cfg.BorderWidth)

	sess, err := x11.Connect()
	if err != nil {
		log.Printf("Failed to connect to display: %v", err)
		return 1
	}
	defer sess.Close()

	if err := sess.Prepare(); err != nil {
		log.Printf("Failed to prepare session: %v", err)
		return 1
	}

	mgr := wm.New(sess, sess.Atoms(), sess.Setup(), cfg)
	if err := mgr.Startup(); err != nil {
		log.Printf("Failed to start: %v", err)
		return 1
	}
	log.Printf("stackwm started")

	spawnAutostart(cfg.Autostart)

	// Termination signals become the quit remote command, so the
	// blocking event fetch observes the shutdown request.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		if err := sess.SendCommand("quit"); err != nil {
			log.Printf("Failed to deliver quit on signal: %v", err)
		}
	}()

	mgr.Run()
	log.Printf("stackwm stopped")
	return 0
}

// spawnAutostart launches the startup script once, fire-and-forget. Its
// termination is ignored; a reaper goroutine just keeps it from
// lingering as a zombie.
func spawnAutostart(script string) {
	if script == "" {
		return
	}
	if _, err := os.Stat(script); err != nil {
		return
	}
	cmd := exec.Command("/bin/sh", "-c", script)
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to run autostart script: %v", err)
		return
	}
	go cmd.Wait()
}
