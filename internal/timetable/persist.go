package timetable

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wwpump/controller/internal/model"
)

// Persist writes the slot list to path as a round-trippable text format:
// one "weekday,hour,minute,second,count" line per slot. An empty table
// is not written at all — persist returns false without touching the
// medium, per spec.md §4.5.
//
// The write is atomic: it writes to path+".tmp" and renames over path,
// matching the teacher's SaveSystemState pattern, so a crash mid-write
// never corrupts the live file.
func (tt *Timetable) Persist(path string) (bool, error) {
	slots := tt.Slots()
	if len(slots) == 0 {
		return false, nil
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return false, fmt.Errorf("timetable: failed to create temp file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, s := range slots {
		if _, err := fmt.Fprintf(w, "%d,%d,%d,%d,%d\n", s.Weekday, s.Hour, s.Minute, s.Second, s.Count); err != nil {
			f.Close()
			return false, fmt.Errorf("timetable: failed to write slot: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return false, fmt.Errorf("timetable: failed to flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return false, fmt.Errorf("timetable: failed to sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("timetable: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return false, fmt.Errorf("timetable: failed to rename into place: %w", err)
	}

	log.Debug().Str("path", path).Int("slots", len(slots)).Msg("timetable: persisted")
	return true, nil
}

// Load reads the slot list from path. A missing file is benign and
// yields an empty table (spec.md §7): load never fails on ENOENT.
func (tt *Timetable) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			tt.replaceAll(nil)
			return nil
		}
		log.Warn().Err(err).Str("path", path).Msg("timetable: load failed, starting empty")
		tt.replaceAll(nil)
		return nil
	}
	defer f.Close()

	var slots []model.Slot
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 5 {
			log.Warn().Str("line", line).Msg("timetable: skipping malformed line")
			continue
		}
		vals := make([]int, 5)
		malformed := false
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				malformed = true
				break
			}
			vals[i] = n
		}
		if malformed {
			log.Warn().Str("line", line).Msg("timetable: skipping malformed line")
			continue
		}
		slots = append(slots, model.Slot{
			Weekday: vals[0],
			Hour:    vals[1],
			Minute:  vals[2],
			Second:  vals[3],
			Count:   vals[4],
		})
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("timetable: error scanning file, starting empty")
		tt.replaceAll(nil)
		return nil
	}

	tt.replaceAll(slots)
	log.Info().Str("path", path).Int("slots", len(slots)).Msg("timetable: loaded")
	return nil
}
