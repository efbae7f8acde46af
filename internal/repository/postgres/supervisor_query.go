package postgres

import "github.com/Gosee6432/MindCounselorHub-sub001/internal/model"

const supervisorColumns = `sp.id, sp.user_id, sp.name, sp.gender, sp.birth_year, sp.certification,
	sp.association, sp.region, sp.online_available, sp.offline_available, sp.national_program,
	sp.supervision_types, sp.target_groups, sp.specialties, sp.approaches, sp.experience_years,
	sp.fee_per_session, sp.introduction, sp.contact_email, sp.kakao_id, sp.photo_key,
	sp.credential_key, sp.status, sp.reject_reason, sp.created_at, sp.updated_at`

var supervisorOrder = map[string]string{
	model.SortRecent:     "sp.created_at DESC, sp.id DESC",
	model.SortExperience: "sp.experience_years DESC, sp.id DESC",
	model.SortFeeAsc:     "sp.fee_per_session ASC, sp.id ASC",
	model.SortFeeDesc:    "sp.fee_per_session DESC, sp.id DESC",
	model.SortName:       "sp.name ASC, sp.id ASC",
}

// supervisorWhere composes one predicate per active constraint of f.
func supervisorWhere(f model.SupervisorFilter) *whereClause {
	w := &whereClause{}
	if f.Status != "" {
		w.add("sp.status = %[1]s", string(f.Status))
	}
	if f.Search != "" {
		w.add(`(sp.name ILIKE %[1]s OR sp.introduction ILIKE %[1]s OR sp.certification ILIKE %[1]s
	OR sp.association ILIKE %[1]s
	OR EXISTS (SELECT 1 FROM unnest(sp.specialties || sp.approaches) AS t(v) WHERE t.v ILIKE %[1]s))`,
			likePattern(f.Search))
	}
	if f.Gender != "" {
		w.add("sp.gender = %[1]s", f.Gender)
	}
	if f.Region != "" {
		w.add("sp.region = %[1]s", f.Region)
	}
	if f.Certification != "" {
		w.add("sp.certification = %[1]s", f.Certification)
	}
	if f.TargetGroup != "" {
		w.add("%[1]s = ANY(sp.target_groups)", f.TargetGroup)
	}
	if f.SupervisionType != "" {
		w.add("%[1]s = ANY(sp.supervision_types)", f.SupervisionType)
	}
	if f.Specialty != "" {
		w.add("%[1]s = ANY(sp.specialties)", f.Specialty)
	}
	if f.NationalProgram != nil {
		w.add("sp.national_program = %[1]s", *f.NationalProgram)
	}
	if f.OnlineAvailable != nil {
		w.add("sp.online_available = %[1]s", *f.OnlineAvailable)
	}
	if f.OfflineAvailable != nil {
		w.add("sp.offline_available = %[1]s", *f.OfflineAvailable)
	}
	if f.MaxFee > 0 {
		w.add("sp.fee_per_session <= %[1]s", f.MaxFee)
	}
	return w
}

// buildSupervisorQueries returns the count and page queries for f with
// their arguments. The page query appends LIMIT and OFFSET arguments.
func buildSupervisorQueries(f model.SupervisorFilter) (countQ string, countArgs []any, pageQ string, pageArgs []any) {
	w := supervisorWhere(f)
	order, ok := supervisorOrder[f.Sort]
	if !ok {
		order = supervisorOrder[model.SortRecent]
	}

	countQ = "SELECT COUNT(*) FROM supervisor_profiles sp" + w.String()
	pageQ = "SELECT " + supervisorColumns + " FROM supervisor_profiles sp" + w.String() +
		" ORDER BY " + order +
		" LIMIT " + w.next(1) + " OFFSET " + w.next(2)

	countArgs = w.args
	pageArgs = append(append([]any{}, w.args...), f.Limit, f.Offset)
	return countQ, countArgs, pageQ, pageArgs
}
