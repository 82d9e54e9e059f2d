// Package env holds the process-wide configuration singleton. Per
// SPEC_FULL.md §9, this is the one deliberate exception to "no hidden
// globals" — configuration is read-only after startup and genuinely
// process-wide. The core collaborators (Clock, TempSensor, Indicator,
// Timetable, PumpController, TimerWheel, BackupButton, GPIOBoard) are
// never held here; they are explicit fields on Orchestrator.
package env

import "github.com/wwpump/controller/internal/config"

var Cfg *config.Config
