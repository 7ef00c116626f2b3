package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrOverlap возвращается, когда БД отклонила пересекающееся активное бронирование
	ErrOverlap = errors.New("reservation.repository: overlapping active reservation")

	// ErrStatusChanged возвращается, когда статус изменился между чтением и обновлением
	ErrStatusChanged = errors.New("reservation.repository: reservation status changed concurrently")

	// ErrNotInTransaction возвращается, когда блокировка запрошена вне транзакции
	ErrNotInTransaction = errors.New("reservation.repository: lock requires an active transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
