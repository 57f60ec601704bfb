package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/schooldesk/substitute-api/internal/models"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

// maxDailyAssignments caps how many periods one substitute may cover per day.
const maxDailyAssignments = 6

type assignmentRepository interface {
	Load(ctx context.Context) (models.AssignmentFile, error)
	Save(ctx context.Context, file models.AssignmentFile) error
	Update(ctx context.Context, fn func(file models.AssignmentFile) (models.AssignmentFile, error)) error
	Warnings(ctx context.Context) (map[string][]string, error)
	SaveWarnings(ctx context.Context, date string, warnings []string) error
}

// SubstituteAvailability annotates one substitute for assignment UIs. The
// flag is advisory; the write boundary is what actually rejects double
// bookings.
type SubstituteAvailability struct {
	Teacher   models.Teacher `json:"teacher"`
	Available bool           `json:"available"`
	Assigned  int            `json:"assigned"`
}

// AssignmentService books substitutes for absent teachers, manually and
// through the automatic engine.
type AssignmentService struct {
	repo     assignmentRepository
	absences absenceRepository
	roster   teacherRepository
	schedule teacherScheduleReader
	logger   *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, absences absenceRepository, roster teacherRepository, schedule teacherScheduleReader, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, absences: absences, roster: roster, schedule: schedule, logger: logger}
}

// Assignments returns assignments, filtered to one date when date is given.
func (s *AssignmentService) Assignments(ctx context.Context, date string) ([]models.SubstituteAssignment, error) {
	file, err := s.repo.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	if date == "" {
		return file.Assignments, nil
	}
	out := []models.SubstituteAssignment{}
	for _, a := range file.Assignments {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

// Assign books one substitute for every period of an absent teacher's entry.
// A substitute already covering any overlapping period on that date is
// rejected with a DOUBLE_BOOKED conflict before anything is written.
func (s *AssignmentService) Assign(ctx context.Context, absentTeacherID, substituteID int, date string) ([]models.SubstituteAssignment, error) {
	sub, err := s.roster.FindByID(ctx, substituteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve substitute")
	}
	if sub == nil || !sub.IsSubstitute {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "substitute not found")
	}

	entries, err := s.absences.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read absence registry")
	}
	var absent *models.AbsentTeacher
	for i := range entries {
		if entries[i].TeacherID == absentTeacherID {
			absent = &entries[i]
			break
		}
	}
	if absent == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "absence record not found for date")
	}

	var created []models.SubstituteAssignment
	err = s.repo.Update(ctx, func(file models.AssignmentFile) (models.AssignmentFile, error) {
		booked := bookedPeriods(file.Assignments, sub.Name, date)
		for _, p := range absent.Periods {
			if booked[p.Period] {
				return file, appErrors.Clone(appErrors.ErrDoubleBooked,
					fmt.Sprintf("%s is already booked for period %d on %s", sub.Name, p.Period, date))
			}
		}
		for _, p := range absent.Periods {
			a := models.SubstituteAssignment{
				OriginalTeacher: absent.Name,
				Period:          p.Period,
				ClassName:       p.ClassName,
				Substitute:      sub.Name,
				SubstitutePhone: sub.Phone(),
				Date:            date,
			}
			file.Assignments = append(file.Assignments, a)
			created = append(created, a)
		}
		return file, nil
	})
	if err != nil {
		return nil, err
	}

	subName := sub.Name
	subID := sub.ID
	err = s.absences.Update(ctx, func(entries []models.AbsentTeacher) ([]models.AbsentTeacher, error) {
		for i := range entries {
			if entries[i].TeacherID == absentTeacherID && entries[i].Date == date {
				entries[i].AssignedSubstitute = &subName
				entries[i].SubstituteID = &subID
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update absence registry")
	}

	s.logger.Info("substitute assigned",
		zap.Int("absentTeacherId", absentTeacherID),
		zap.Int("substituteId", substituteID),
		zap.String("date", date),
		zap.Int("periods", len(created)))
	return created, nil
}

// Availability lists substitutes with an advisory availability flag for the
// date.
func (s *AssignmentService) Availability(ctx context.Context, date string) ([]SubstituteAvailability, error) {
	teachers, err := s.roster.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to access teacher roster")
	}
	file, err := s.repo.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	counts := map[string]int{}
	for _, a := range file.Assignments {
		if a.Date == date {
			counts[models.NormalizeName(a.Substitute)]++
		}
	}

	out := []SubstituteAvailability{}
	for _, t := range teachers {
		if !t.IsSubstitute {
			continue
		}
		n := counts[models.NormalizeName(t.Name)]
		out = append(out, SubstituteAvailability{
			Teacher:   t,
			Available: n < maxDailyAssignments,
			Assigned:  n,
		})
	}
	return out, nil
}

// AutoAssign books substitutes for every uncovered period of every absent
// teacher on the date. Selection prefers grade-compatible substitutes and
// the least-loaded candidate; gaps and grade fallbacks surface as warnings.
func (s *AssignmentService) AutoAssign(ctx context.Context, date string) ([]models.SubstituteAssignment, []string, error) {
	absent, err := s.absences.ListByDate(ctx, date)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read absence registry")
	}
	teachers, err := s.roster.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to access teacher roster")
	}

	day, _ := weekdayOfDate(date)
	absentNames := map[string]bool{}
	for _, a := range absent {
		absentNames[models.NormalizeName(a.Name)] = true
	}

	var subs []models.Teacher
	busy := map[string]map[int]bool{}
	for _, t := range teachers {
		if !t.IsSubstitute || absentNames[models.NormalizeName(t.Name)] {
			continue
		}
		subs = append(subs, t)
		slots, err := s.schedule.TeacherSchedule(ctx, t.Name)
		if err != nil {
			return nil, nil, err
		}
		periods := map[int]bool{}
		for _, slot := range slots {
			if slot.Day == day {
				periods[slot.Period] = true
			}
		}
		busy[models.NormalizeName(t.Name)] = periods
	}

	file, err := s.repo.Load(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	loads := map[string]int{}
	assignedPeriods := map[string]map[int]bool{}
	covered := map[string]bool{}
	for _, a := range file.Assignments {
		if a.Date != date {
			continue
		}
		key := models.NormalizeName(a.Substitute)
		loads[key]++
		if assignedPeriods[key] == nil {
			assignedPeriods[key] = map[int]bool{}
		}
		assignedPeriods[key][a.Period] = true
		covered[coverageKey(a.OriginalTeacher, a.Period, a.ClassName)] = true
	}

	var created []models.SubstituteAssignment
	var warnings []string

	for _, entry := range absent {
		for _, p := range entry.Periods {
			if covered[coverageKey(entry.Name, p.Period, p.ClassName)] {
				continue
			}
			grade := classGrade(p.ClassName)
			pick, fallback := pickSubstitute(subs, busy, assignedPeriods, loads, p.Period, grade)
			if pick == nil {
				warnings = append(warnings, fmt.Sprintf("no substitute available for %s period %d (%s)", entry.Name, p.Period, p.ClassName))
				continue
			}
			if fallback {
				warnings = append(warnings, fmt.Sprintf("%s covers %s (grade %d) above their grade level", pick.Name, p.ClassName, grade))
			}
			key := models.NormalizeName(pick.Name)
			loads[key]++
			if assignedPeriods[key] == nil {
				assignedPeriods[key] = map[int]bool{}
			}
			assignedPeriods[key][p.Period] = true
			covered[coverageKey(entry.Name, p.Period, p.ClassName)] = true
			created = append(created, models.SubstituteAssignment{
				OriginalTeacher: entry.Name,
				Period:          p.Period,
				ClassName:       p.ClassName,
				Substitute:      pick.Name,
				SubstitutePhone: pick.Phone(),
				Date:            date,
			})
		}
	}

	if len(created) > 0 {
		err = s.repo.Update(ctx, func(file models.AssignmentFile) (models.AssignmentFile, error) {
			file.Assignments = append(file.Assignments, created...)
			return file, nil
		})
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save assignments")
		}
	}
	if err := s.repo.SaveWarnings(ctx, date, warnings); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save warnings")
	}

	s.logger.Info("auto-assignment completed",
		zap.String("date", date),
		zap.Int("assignments", len(created)),
		zap.Int("warnings", len(warnings)))
	return created, warnings, nil
}

// Verify audits current assignments for workload and exclusivity violations.
func (s *AssignmentService) Verify(ctx context.Context, date string) (models.VerificationReport, error) {
	assignments, err := s.Assignments(ctx, date)
	if err != nil {
		return models.VerificationReport{}, err
	}
	report := models.VerificationReport{Valid: true, Total: len(assignments)}

	loads := map[string]int{}
	seen := map[string]bool{}
	for _, a := range assignments {
		key := models.NormalizeName(a.Substitute)
		loads[key]++
		slot := fmt.Sprintf("%s|%d", key, a.Period)
		if seen[slot] {
			report.Issues = append(report.Issues, models.AssignmentCheck{
				Assignment: a,
				Issue:      "substitute booked twice in the same period",
			})
		}
		seen[slot] = true
	}
	for _, a := range assignments {
		if loads[models.NormalizeName(a.Substitute)] > maxDailyAssignments {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s exceeds the daily workload cap", a.Substitute))
			break
		}
	}
	report.Valid = len(report.Issues) == 0
	return report, nil
}

// Warnings returns the stored auto-assign warnings for one date.
func (s *AssignmentService) Warnings(ctx context.Context, date string) ([]string, error) {
	all, err := s.repo.Warnings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load warnings")
	}
	w, ok := all[date]
	if !ok {
		return []string{}, nil
	}
	return w, nil
}

// Reset clears all assignments.
func (s *AssignmentService) Reset(ctx context.Context) error {
	if err := s.repo.Save(ctx, models.AssignmentFile{Assignments: []models.SubstituteAssignment{}}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset assignments")
	}
	s.logger.Info("assignments reset")
	return nil
}

// pickSubstitute selects the least-loaded candidate free in the period and
// under the workload cap. Grade-compatible candidates win; for classes of
// grade 8 and below a higher-grade teacher may step in, flagged by the
// second return.
func pickSubstitute(subs []models.Teacher, busy map[string]map[int]bool, assigned map[string]map[int]bool, loads map[string]int, period, grade int) (*models.Teacher, bool) {
	var compatible, stretched []models.Teacher
	for _, sub := range subs {
		key := models.NormalizeName(sub.Name)
		if busy[key][period] || assigned[key][period] {
			continue
		}
		if loads[key] >= maxDailyAssignments {
			continue
		}
		if sub.GradeLevel == 0 || sub.GradeLevel >= grade {
			compatible = append(compatible, sub)
		} else if grade <= 8 {
			// lower-qualified teachers may stretch up to grade 8
			stretched = append(stretched, sub)
		}
	}
	if pick := leastLoaded(compatible, loads); pick != nil {
		return pick, false
	}
	if pick := leastLoaded(stretched, loads); pick != nil {
		return pick, true
	}
	return nil, false
}

func leastLoaded(candidates []models.Teacher, loads map[string]int) *models.Teacher {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return loads[models.NormalizeName(candidates[i].Name)] < loads[models.NormalizeName(candidates[j].Name)]
	})
	pick := candidates[0]
	return &pick
}

func bookedPeriods(assignments []models.SubstituteAssignment, substitute, date string) map[int]bool {
	norm := models.NormalizeName(substitute)
	out := map[int]bool{}
	for _, a := range assignments {
		if a.Date == date && models.NormalizeName(a.Substitute) == norm {
			out[a.Period] = true
		}
	}
	return out
}

func coverageKey(teacher string, period int, className string) string {
	return fmt.Sprintf("%s|%d|%s", models.NormalizeName(teacher), period, className)
}
