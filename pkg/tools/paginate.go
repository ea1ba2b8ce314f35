package tools

// Paginate 对切片分页, page 从 1 开始, 返回当前页与总数
func Paginate[T any](items []T, page, size int) ([]T, int) {
	total := len(items)

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}

	start := (page - 1) * size
	if start >= total {
		return []T{}, total
	}

	end := start + size
	if end > total {
		end = total
	}

	return items[start:end], total
}
