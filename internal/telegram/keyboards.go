package telegram

import (
	"fmt"

	"festival-bot-backend/internal/services"
)

func ConsentKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "✅ Согласен", CallbackData: "consent_ok"}},
		},
	}
}

func MainMenuKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "🗺️ Карта фестиваля", CallbackData: "map"},
				{Text: "🌳 Лес", CallbackData: "forest"},
			},
			{
				{Text: "🎨 Мастер-класс", CallbackData: "workshop"},
				{Text: "💃 Танцы", CallbackData: "dance"},
			},
			{
				{Text: "🧩 Квест", CallbackData: "quest"},
				{Text: "🖼️ Стикерпак", CallbackData: "sticker"},
			},
			{
				{Text: "🚀 Карьера", CallbackData: "career"},
				{Text: "⏰ Расписание", CallbackData: "schedule"},
			},
		},
	}
}

func BackToMenuKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "⬅️ Главное меню", CallbackData: "main"}},
		},
	}
}

func MapAndMenuKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "⬅️ Главное меню", CallbackData: "main"},
				{Text: "🗺️ Карта", CallbackData: "map"},
			},
		},
	}
}

func VacancyKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "Интересно", CallbackData: "vacancy_yes"},
				{Text: "Пока нет", CallbackData: "vacancy_no"},
			},
		},
	}
}

func DanceIntroKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "📆 Записаться", CallbackData: "dance_slots"}},
			{{Text: "⬅️ Главное меню", CallbackData: "main"}},
		},
	}
}

// SlotPickerKeyboard lists every active slot, with full ones disarmed.
func SlotPickerKeyboard(occupancy []services.SlotOccupancy) *InlineKeyboardMarkup {
	var rows [][]InlineKeyboardButton
	for _, o := range occupancy {
		text := fmt.Sprintf("%s — %s", o.Slot.Day, o.Slot.TimeSlot)
		if o.Count >= o.Slot.MaxCapacity {
			rows = append(rows, []InlineKeyboardButton{
				{Text: text + " (заполнен)", CallbackData: "slot_full"},
			})
			continue
		}
		rows = append(rows, []InlineKeyboardButton{
			{Text: text, CallbackData: fmt.Sprintf("slot|%s|%s", o.Slot.Day, o.Slot.TimeSlot)},
		})
	}
	rows = append(rows, []InlineKeyboardButton{
		{Text: "⬅️ Назад", CallbackData: "dance"},
		{Text: "⬅️ Главное меню", CallbackData: "main"},
	})
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

func QuestHintKeyboard(nextStep int) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "Ещё подсказка", CallbackData: fmt.Sprintf("hint|%d", nextStep)}},
			{
				{Text: "⬅️ Назад", CallbackData: "quest"},
				{Text: "⬅️ Главное меню", CallbackData: "main"},
			},
		},
	}
}

func QuestIntroKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "🚀 К подсказкам", CallbackData: "hint|1"}},
			{{Text: "⬅️ Главное меню", CallbackData: "main"}},
		},
	}
}
