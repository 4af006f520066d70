package notify

// Language constants
const (
	LangEnglish = "en"
	LangRussian = "ru"
)

// Translation is a map of message keys to translated text
type Translation map[string]string

// Translations stores all language translations
var Translations = map[string]Translation{
	LangEnglish: {
		"restricted_title":          "🔒 <b>New member restricted</b>",
		"restrict_failed_title":     "❌ <b>Failed to restrict member</b>",
		"rejoin_blocked_title":      "🚫 <b>Rejoin blocked</b>",
		"remove_failed_title":       "❌ <b>Failed to ban member</b>",
		"expired_title":             "🗑️ <b>Member removed from the group</b>",
		"expire_failed_title":       "❌ <b>Failed to remove member</b>",
		"storage_failed_title":      "❌ <b>Database error</b>",
		"sweep_idle_title":          "ℹ️ <b>Scheduled check finished</b>",
		"startup_title":             "✅ <b>Bot started</b>",
		"status_title":              "🤖 <b>Bot status</b>",
		"cmd_desc_status":           "Show bot status",
		"field_id":                  "ID: <code>%d</code>",
		"field_name":                "Name: %s",
		"field_username":            "Username: %s",
		"field_error":               "Error: %s",
		"field_reason":              "Reason: %s",
		"field_removal_in":          "Removal in: %d days",
		"username_missing":          "none",
		"name_missing":              "no name",
		"reason_previously_removed": "member was removed before",
		"reason_expired":            "restriction period expired (%d days)",
		"sweep_idle_body":           "No members to remove.",
		"field_group":               "🏢 <b>Group ID:</b> <code>%d</code>",
		"field_chat":                "📍 <b>Current chat ID:</b> <code>%d</code>",
		"field_restricted":          "👥 <b>Restricted members:</b> %d",
		"field_banned":              "🚫 <b>Banned in total:</b> %d",
		"field_period":              "⏱️ <b>Restriction period:</b> %d days",
		"field_interval":            "🔄 <b>Check interval:</b> %d minutes",
		"field_last_check":          "🕐 <b>Last check:</b> %s",
		"field_next_check":          "⏰ <b>Next check:</b> %s",
		"next_check_in":             "%s (in %d min)",
		"check_never":               "not run yet",
		"check_unscheduled":         "not scheduled",
		"field_uptime":              "⌛ <b>Uptime:</b> %s",
		"field_memory":              "💾 <b>Memory:</b> %d MB",
		"field_joins":               "📥 <b>Join updates handled:</b> %d",
	},
	LangRussian: {
		"restricted_title":          "🔒 <b>Новый участник ограничен</b>",
		"restrict_failed_title":     "❌ <b>Ошибка при ограничении пользователя</b>",
		"rejoin_blocked_title":      "🚫 <b>Повторное вступление заблокировано</b>",
		"remove_failed_title":       "❌ <b>Ошибка при бане пользователя</b>",
		"expired_title":             "🗑️ <b>Пользователь удален из группы</b>",
		"expire_failed_title":       "❌ <b>Ошибка при удалении пользователя</b>",
		"storage_failed_title":      "❌ <b>Ошибка базы данных</b>",
		"sweep_idle_title":          "ℹ️ <b>Плановая проверка завершена</b>",
		"startup_title":             "✅ <b>Бот успешно запущен</b>",
		"status_title":              "🤖 <b>Статус бота</b>",
		"cmd_desc_status":           "Показать статус бота",
		"field_id":                  "ID: <code>%d</code>",
		"field_name":                "Имя: %s",
		"field_username":            "Username: %s",
		"field_error":               "Ошибка: %s",
		"field_reason":              "Причина: %s",
		"field_removal_in":          "Удаление через: %d дней",
		"username_missing":          "отсутствует",
		"name_missing":              "без имени",
		"reason_previously_removed": "пользователь был ранее удален",
		"reason_expired":            "истек период ограничения (%d дней)",
		"sweep_idle_body":           "Новых пользователей для удаления не найдено.",
		"field_group":               "🏢 <b>Группа ID:</b> <code>%d</code>",
		"field_chat":                "📍 <b>ID текущего чата:</b> <code>%d</code>",
		"field_restricted":          "👥 <b>Активных наблюдаемых:</b> %d",
		"field_banned":              "🚫 <b>Забанено всего:</b> %d",
		"field_period":              "⏱️ <b>Период ограничения:</b> %d дней",
		"field_interval":            "🔄 <b>Интервал проверок:</b> %d минут",
		"field_last_check":          "🕐 <b>Последняя проверка:</b> %s",
		"field_next_check":          "⏰ <b>Следующая проверка:</b> %s",
		"next_check_in":             "%s (через %d мин)",
		"check_never":               "еще не проводилась",
		"check_unscheduled":         "не запланирована",
		"field_uptime":              "⌛ <b>Время работы:</b> %s",
		"field_memory":              "💾 <b>Память:</b> %d МБ",
		"field_joins":               "📥 <b>Обработано вступлений:</b> %d",
	},
}

// GetTranslation returns the correct translation for a given language code and key
func GetTranslation(lang, key string) string {
	// Default to English if language not supported
	if _, ok := Translations[lang]; !ok {
		lang = LangEnglish
	}

	if translation, ok := Translations[lang][key]; ok {
		return translation
	}

	// Fall back to English if key not found in specified language
	if translation, ok := Translations[LangEnglish][key]; ok {
		return translation
	}

	// Return the key itself if translation not found
	return key
}
