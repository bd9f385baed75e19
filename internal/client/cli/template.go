package cli

const reportTemplate = `
=== Sync Report ({{.Reason}}) ===
{{range .Rows}}
{{printf "%-17s" .Entity}}
{{- if .Err}} FAILED: {{.Err}}
{{- else if .Result}} pushed {{.Result.UpsertsPushed}}, deleted {{.Result.DeletesPushed}}, pulled {{.Result.Pulled}}, applied {{.Result.Applied}}
{{- if .Result.KeptLocal}}, kept local {{.Result.KeptLocal}}{{end}}
{{- if .Result.SkippedOrphans}}, orphans {{.Result.SkippedOrphans}}{{end}}
{{- if .Result.StoppedOnGap}}, waiting for parents{{end}}
{{- if .Result.Reconciled}}, reconciled (-{{.Result.ReconciledDeletes}}){{end}}
{{- end}}
{{- end}}

Duration: {{.Duration}}
`

const statusTemplate = `
=== Sync Status ===

User:     {{if .UserID}}{{.UserID}}{{else}}(none){{end}}
Backend:  {{.Backend}}
Database: {{.Database}}
{{range .Rows}}
{{printf "%-17s" .Entity}} local {{.Local}}, pending {{.Pending}}
{{- if .Cursor}}, cursor {{.Cursor}}{{else}}, not pulled yet{{end}}
{{- if .Newest}}, newest server row {{.Newest}}{{end}}
{{- end}}
{{if .TotalPending}}
{{.TotalPending}} change(s) waiting to be synchronized. Run 'rentkeeper sync'.
{{- else}}
All local changes are synchronized.
{{- end}}
`

const tenantTemplate = `{{.LocalID}}	{{.RemoteID}}	{{.FirstName}} {{.LastName}}{{if .Email}} <{{.Email}}>{{end}}{{template "flags" .}}`

const housingTemplate = `{{.LocalID}}	{{.RemoteID}}	{{.Label}}, {{.Address}}{{if .City}}, {{.City}}{{end}}	rent {{cents .RentCents}}{{template "flags" .}}`

const leaseTemplate = `{{.LocalID}}	{{.RemoteID}}	housing #{{.HousingLocalID}} tenant #{{.TenantLocalID}}	from {{.StartDate}}{{if .EndDate}} to {{.EndDate}}{{end}}	rent {{cents .RentCents}}{{template "flags" .}}`

const keyTemplate = `{{.LocalID}}	{{.RemoteID}}	{{.Label}} x{{.Quantity}}	housing #{{.HousingLocalID}}{{if .HandedOverTo}}	with {{.HandedOverTo}}{{end}}{{template "flags" .}}`

const indexationEventTemplate = `{{.LocalID}}	{{.RemoteID}}	lease #{{.LeaseLocalID}}	{{.EffectiveDate}}	{{cents .OldRentCents}} -> {{cents .NewRentCents}} (index {{.IndexValue}}){{template "flags" .}}`

const flagsTemplate = `{{define "flags"}}{{if .IsDeleted}}	[deleted]{{end}}{{if .Dirty}}	[pending]{{end}}{{end}}`
