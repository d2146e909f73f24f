package settings

// Switch keys.
const (
	KeyMasterToggle         = "enable_alerts_master_toggle"
	KeyEmergency            = "enable_emergency_alerts"
	KeyAmber                = "enable_cmas_amber_alerts"
	KeyExtreme              = "enable_cmas_extreme_threat_alerts"
	KeySevere               = "enable_cmas_severe_threat_alerts"
	KeyPresidential         = "enable_cmas_presidential_alerts"
	KeyPublicSafety         = "enable_public_safety_messages"
	KeyPublicSafetyFull     = "enable_public_safety_messages_full_screen"
	KeyTestAlerts           = "enable_test_alerts"
	KeyExerciseAlerts       = "enable_exercise_alerts"
	KeyOperatorDefined      = "enable_operator_defined_alerts"
	KeyStateLocalTest       = "enable_state_local_test_alerts"
	KeyAreaUpdateInfo       = "enable_area_update_info_alerts"
	KeyVibrate              = "enable_alert_vibrate"
	KeySecondLanguage       = "receive_cmas_in_second_language"
	KeyOverrideDnd          = "override_dnd"
	KeySpeech               = "enable_alert_speech"
	KeyShowOptOutDialog     = "show_cmas_opt_out_dialog"
	KeyReminderInterval     = "alert_reminder_interval"
	KeyDndSettingsChanged   = "override_dnd_settings_changed"
	KeyAnyChangedByUser     = "any_preference_changed_by_user"
	KeyBackupDataChanged    = "backup_data_changed"
	defaultReminderInterval = "0"
)

type switchSpec struct {
	key string
	def bool
}

// switchCatalog lists every switch in display order.
var switchCatalog = []switchSpec{
	{KeyMasterToggle, true},
	{KeyEmergency, true},
	{KeyAmber, true},
	{KeyExtreme, true},
	{KeySevere, true},
	{KeyPresidential, true},
	{KeyPublicSafety, true},
	{KeyPublicSafetyFull, false},
	{KeyTestAlerts, false},
	{KeyExerciseAlerts, false},
	{KeyOperatorDefined, false},
	{KeyStateLocalTest, false},
	{KeyAreaUpdateInfo, true},
	{KeyVibrate, true},
	{KeySecondLanguage, false},
	{KeyOverrideDnd, false},
	{KeySpeech, true},
	{KeyShowOptOutDialog, true},
}

// subAlertKeys are the switches that move with the master toggle.
var subAlertKeys = []string{
	KeyEmergency,
	KeyAmber,
	KeyExtreme,
	KeySevere,
	KeyPublicSafety,
	KeyTestAlerts,
	KeyExerciseAlerts,
	KeyOperatorDefined,
	KeyStateLocalTest,
	KeyAreaUpdateInfo,
}

// markerKeys are written by rules and the notifier but belong to no node.
var markerKeys = []string{
	KeyDndSettingsChanged,
	KeyAnyChangedByUser,
	KeyBackupDataChanged,
}

// MarkerKeys returns the keys persisted outside of any node.
func MarkerKeys() []string {
	out := make([]string, len(markerKeys))
	copy(out, markerKeys)
	return out
}
