// Package agent задаёт профили ролей и интерфейс генерации текста.
//
// Client — единственная точка расширения: стадии pipeline собирают
// prompt и передают его клиенту вместе с профилем роли. Реализация
// по умолчанию (CannedClient) детерминирована и не ходит в сеть.
package agent
