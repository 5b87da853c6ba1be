package utils

import (
	"math/rand"
	"time"

	"github.com/fehmi19/cheebo/models"
)

// NextOrderNumber draws a candidate order number from the current time
func NextOrderNumber() string {
	return models.GenerateOrderNumber(time.Now(), rand.Intn)
}
