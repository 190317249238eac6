package telegram

// Fallback texts served when the corresponding ConfigStore entry is
// missing. Admins edit the live copies through the config API.
const (
	defaultConsentText = "Прежде чем продолжить, подтверди согласие на обработку персональных данных.\n\n" +
		"Мы используем их только для работы фестивального бота."

	defaultMainMenuFirst = "Спасибо! 🎉\n\nВот что есть на фестивале — выбирай:"
	defaultMainMenu      = "Выбирай раздел:"

	defaultMapText      = "🗺️ Карта фестиваля. Все площадки и точки активности."
	defaultForestText   = "🌳 Лес — зона отдыха и арт-объектов. Загляни!"
	defaultWorkshopText = "🎨 Мастер-класс: расписание и площадка — на карте."
	defaultCareerText   = "🚀 Хочешь к нам? Загляни на карьерный сайт!"
	defaultScheduleText = "⏰ Расписание площадок фестиваля."

	defaultDanceIntro        = "💃 Танцевальные интенсивы! Выбирай слот и записывайся."
	defaultDanceChooseSlot   = "Выбери день и время:"
	defaultDanceConfirmation = "✅ Записал! Твой слот: %s. Ждём тебя!"
	defaultDanceFull         = "Увы, этот слот уже заполнен 😕 Выбери другой:"

	defaultStickerIntro = "Давай сгенерим твой персональный стикер! Просто пришли селфи на нейтральном фоне.\n\n" +
		"<i>Фото нигде не хранится — после обработки мы сразу его удаляем.</i>"
	defaultStickerPending = "🔄 Твой стикерпак уже в процессе генерации. Это занимает пару минут."
	defaultStickerQueue   = "Сейчас слишком много заявок на генерацию. Попробуй через пару минут."
	defaultStickerFailed  = "⚠️ Не получилось создать стикер. Попробуй другое фото."
	defaultStickerReady   = "Твой стикерпак готов! %s"

	defaultQuestIntro    = "🧩 Квест: найди все QR-коды на площадках и собери стикеры!"
	defaultQuestDone     = "🏆 Поздравляем! Ты нашёл все стикеры!\nЗабегай в лаунж за призом! 🥳"
	defaultSurveyThanks  = "Спасибо за ответы! 🎉"
	defaultVacancyYes    = "Круто! После фестиваля мы свяжемся с тобой :)"
	defaultVacancyNo     = "В любом случае не прощаемся — будем рады видеть тебя на карьерном сайте!"
	defaultDisambiguate  = "Не понял команду 🙈 Используй /start или кнопки меню."
	defaultGenericError  = "⚠️ Что-то пошло не так. Попробуй ещё раз."
	defaultNeedConsent   = "Сначала нужно зарегистрироваться: нажми /start."
)

var defaultSurveyQuestions = []string{
	"Как тебя зовут? (имя и фамилия)",
	"Из какого ты города?",
	"Кем работаешь?",
	"В какой компании?",
	"Рассказать тебе про наши вакансии?",
}
