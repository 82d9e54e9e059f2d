package logging

import (
	"fmt"
	"os"
	"time"
)

// BackupLog appends a UTF-8 line to wwpumpe.log (spec §6) on every
// acted-upon backup-button press. It implements backupbutton.BackupLog.
// Unlike the general logger, this sink is opened lazily and only ever
// written to from Press — most runs, with no button press, never touch
// the file at all.
type BackupLog struct {
	path string
}

// NewBackupLog returns a BackupLog appending to path.
func NewBackupLog(path string) *BackupLog {
	return &BackupLog{path: path}
}

func (b *BackupLog) LogBackupAck(now int64) error {
	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("backuplog: open failed: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s backup-button acked, timetable flushed\n", time.Unix(now, 0).UTC().Format(time.RFC3339))
	_, err = f.WriteString(line)
	return err
}
