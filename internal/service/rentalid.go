package service

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"frontdesk-rental-backend/internal/domain"
)

var servicePrefixes = map[domain.ServiceType]string{
	domain.ServiceBike:    "B",
	domain.ServiceOnsen:   "O",
	domain.ServiceLuggage: "L",
}

var channelPrefixes = map[domain.RegistrationChannel]string{
	domain.ChannelCustomer: "",
	domain.ChannelCounter:  "C",
	domain.ChannelHotel:    "H",
}

// IDGenerator issues rental IDs of the form
// <service prefix><channel prefix>[<hotel code>]<last 8 digits of unix ms>.
// The timestamp part never repeats within one generator, so two registrations in
// the same millisecond still get distinct IDs.
type IDGenerator struct {
	now  func() time.Time
	mu   sync.Mutex
	last int64
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Generate(service domain.ServiceType, channel domain.RegistrationChannel, hotelName string) string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	prefix, ok := servicePrefixes[service]
	if !ok {
		prefix = "R"
	}
	prefix += channelPrefixes[channel]
	if channel == domain.ChannelHotel {
		prefix += hotelCode(hotelName)
	}
	return fmt.Sprintf("%s%08d", prefix, ms%100000000)
}

// hotelCode keeps the first three ASCII letters of the hotel name, upper-cased.
func hotelCode(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() == 3 {
			break
		}
	}
	return b.String()
}
