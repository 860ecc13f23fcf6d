package engine

import (
	"sync/atomic"

	"github.com/dougsko/rigsync/pkg/protocol"
)

type stats struct {
	polls           atomic.Uint64
	pollFailures    atomic.Uint64
	pushes          atomic.Uint64
	pushFailures    atomic.Uint64
	qsys            atomic.Uint64
	qsyFailures     atomic.Uint64
	datagrams       atomic.Uint64
	decodeErrors    atomic.Uint64
	contacts        atomic.Uint64
	contactFailures atomic.Uint64
}

func (s *stats) snapshot() protocol.Counters {
	return protocol.Counters{
		Polls:           s.polls.Load(),
		PollFailures:    s.pollFailures.Load(),
		Pushes:          s.pushes.Load(),
		PushFailures:    s.pushFailures.Load(),
		QSYs:            s.qsys.Load(),
		QSYFailures:     s.qsyFailures.Load(),
		Datagrams:       s.datagrams.Load(),
		DecodeErrors:    s.decodeErrors.Load(),
		Contacts:        s.contacts.Load(),
		ContactFailures: s.contactFailures.Load(),
	}
}
