package main

import (
	"github.com/gen2brain/beeep"
)

// beeepNotifier is the portable fallback. It cannot replace popups.
type beeepNotifier struct{}

func newBeeepNotifier() *beeepNotifier {
	beeep.AppName = appName
	return &beeepNotifier{}
}

func (beeepNotifier) Show(_ NotificationID, d Draft) (NotificationID, error) {
	return 0, beeep.Notify(d.Summary, d.Body, d.Icon)
}

func (beeepNotifier) Close() error { return nil }
