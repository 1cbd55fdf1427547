package layout

func bodyWrapperClass(showSidebar bool) string {
	if showSidebar {
		return "flex min-h-screen"
	}
	return "min-h-screen"
}

func mainClass(showSidebar bool) string {
	if showSidebar {
		return "flex-1 px-8 py-8"
	}
	return "mx-auto max-w-3xl px-4 py-10"
}
