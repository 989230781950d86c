package kiosk

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

var epoch = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
