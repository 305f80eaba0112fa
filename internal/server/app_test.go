package server

import (
	"testing"

	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/server/mailer"
	"github.com/stretchr/testify/assert"
)

func TestNewMailer(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()

	assert.IsType(t, &mailer.LogMailer{}, NewMailer(c, logging.Nop()))

	c.SMTPHost = "smtp.example.com"
	assert.IsType(t, &mailer.SMTPMailer{}, NewMailer(c, logging.Nop()))
}
