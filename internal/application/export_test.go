package application

import "time"

// SetClock replaces the sweeper's time source.
func (s *ExpirySweeper) SetClock(now func() time.Time) { s.now = now }

// SetClock replaces the ledger's time source.
func (l *UploadLedger) SetClock(now func() time.Time) { l.now = now }

// SetClock replaces the panel's time source.
func (p *PanelService) SetClock(now func() time.Time) { p.now = now }
