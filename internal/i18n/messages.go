// Package i18n holds the user-facing API messages and picks the language a
// response is rendered in.
package i18n

import "golang.org/x/text/language"

// Message keys. The English text doubles as the key.
const (
	MsgUnauthorized     = "Access denied. Invalid or missing API key."
	MsgSupplierNotFound = "Supplier not found."
	MsgInvalidJSON      = "Invalid JSON format."
	MsgFieldRequired    = "Field '%s' is required."
	MsgCreated          = "Supplier created."
	MsgCreateFailed     = "Error creating supplier."
	MsgIDMissing        = "Supplier ID is not specified."
	MsgUpdated          = "Supplier updated."
	MsgUpdateFailed     = "Error updating supplier."
	MsgDeleted          = "Supplier deleted."
	MsgDeleteFailed     = "Error deleting supplier."
	MsgMethodNotAllowed = "Method not supported."
	MsgInternalError    = "Internal server error: %s"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		MsgUnauthorized:     MsgUnauthorized,
		MsgSupplierNotFound: MsgSupplierNotFound,
		MsgInvalidJSON:      MsgInvalidJSON,
		MsgFieldRequired:    MsgFieldRequired,
		MsgCreated:          MsgCreated,
		MsgCreateFailed:     MsgCreateFailed,
		MsgIDMissing:        MsgIDMissing,
		MsgUpdated:          MsgUpdated,
		MsgUpdateFailed:     MsgUpdateFailed,
		MsgDeleted:          MsgDeleted,
		MsgDeleteFailed:     MsgDeleteFailed,
		MsgMethodNotAllowed: MsgMethodNotAllowed,
		MsgInternalError:    MsgInternalError,
	},
	language.Russian: {
		MsgUnauthorized:     "Доступ запрещен. Неверный или отсутствующий API ключ.",
		MsgSupplierNotFound: "Поставщик не найден.",
		MsgInvalidJSON:      "Неверный формат JSON.",
		MsgFieldRequired:    "Поле '%s' обязательно для заполнения.",
		MsgCreated:          "Поставщик создан.",
		MsgCreateFailed:     "Ошибка при создании поставщика.",
		MsgIDMissing:        "ID поставщика не указан.",
		MsgUpdated:          "Поставщик обновлен.",
		MsgUpdateFailed:     "Ошибка при обновлении поставщика.",
		MsgDeleted:          "Поставщик удален.",
		MsgDeleteFailed:     "Ошибка при удалении поставщика.",
		MsgMethodNotAllowed: "Метод не поддерживается.",
		MsgInternalError:    "Внутренняя ошибка сервера: %s",
	},
}
