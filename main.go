package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	// Check DEBUG environment variable
	debug := os.Getenv("DEBUG") == "1"

	if err := run(debug); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(debug bool) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot resolve home directory: %w", err)
	}

	if err := loadEnvFile(home); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	cfg, err := loadConfig(configPath(home))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.MusicDirectory == "" {
		dir, err := detectMusicDirectory(home)
		if err != nil {
			if cfg.CoverArtMethod == CoverArtLocal {
				log.Printf("⚠️  No music directory found, local cover art disabled: %v", err)
			}
		} else {
			cfg.MusicDirectory = dir
		}
	} else {
		cfg.MusicDirectory = expandHome(cfg.MusicDirectory, home)
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up %s notifications: %w", cfg.Notifier, err)
	}
	defer notifier.Close()

	addr, password := mpdAddress()
	sup := NewSupervisor(addr, password, cfg.MaxConnectionRetries, dialMPD, debug)

	src, err := sup.Connect()
	if err != nil {
		return err
	}

	log.Println("🎵 MPD Notify started")
	log.Printf("📡 Monitoring: %s", addr)
	log.Printf("📢 Notifier: %s", cfg.Notifier)
	log.Printf("🖼️  Cover art: %s", cfg.CoverArtMethod)
	if debug {
		log.Printf("🐛 Music directory: %q", cfg.MusicDirectory)
		log.Println("🐛 Debug mode: enabled")
	}

	agent := NewAgent(cfg, sup, src, notifier,
		NewCoverArtResolver(cfg.CoverArtMethod, cfg.MusicDirectory, debug), debug)
	agent.console = newConsole()

	err = agent.Run()
	agent.src.Close()
	return fmt.Errorf("monitor error: %w", err)
}
