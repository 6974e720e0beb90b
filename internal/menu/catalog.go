package menu

// Section and topic button literals. The label text is the wire command:
// clients press reply-keyboard buttons and the transport delivers the
// label back verbatim.
const (
	KeyGoods      = "💊 Товари"
	KeyPharmacies = "🏥 Аптеки"
	KeyDocuments  = "📑 Документи"
	KeyReports    = "📈 Звіти"
	KeyDefects    = "🛠 Технічний збій"

	KeyGoodsFind = "🔎 Товар не відображається"
	KeyGoodsAdd  = "📥 Додати новий товар"
	KeyGoodsLink = "🪢 Змінити прив'язку товара"

	KeyPharmaciesFind     = "🔎 Аптека не відображається"
	KeyPharmaciesReply    = "🔄 Відповідь на звернення"
	KeyPharmaciesAdd      = "🏥 Додати нову аптеку"
	KeyPharmaciesSchedule = "📆 Змінити графік"
	KeyPharmaciesPhone    = "☎ Змінити номер"
	KeyPharmaciesMap      = "🗺 Змінити точку"
	KeyPharmaciesName     = "🆕 Змінити назву"
	KeyPharmaciesDisable  = "🚫 Відключити аптеку"
	KeyPharmaciesStop     = "❌ Відключити мережу"
	KeyPharmaciesClient   = "📞 Номер клієнта"

	KeyDocumentsContracts = "📜 Договори"
	KeyDocumentsInvoices  = "🧾 Рахунки"
	KeyDocumentsActs      = "📇 Акти"
	KeyDocumentsContact   = "👤 Змінити контактну особу"

	KeyReportsLink        = "🪢 Товари без прив'язки"
	KeyReportsQuality     = "📈 Якість"
	KeyReportsCompetitors = "🗺 Оточення"
	KeyReportsFinance     = "💰 Фінанси"

	KeyDefectsAccount = "🖥 Особистий кабінет"
	KeyDefectsOrders  = "🛒 Замовлення"
	KeyDefectsRests   = "📦 Залишки"
)

// askRow is the trailing keyboard row on every section menu.
var askRow = []string{AskKey, BackKey}

// reportHowTo is the shared tail of every reports-section help text.
const reportHowTo = "Якщо Ви не знайшли відповідь на своє запитання, звертайтесь до менеджера:\n" +
	"Натисніть кнопку «" + CommentKey + "», опишіть проблему ✍ та відправте повідомлення. " +
	"Менеджер зв'яжеться з вами в найкоротший термін 👇"

// documentsHowTo builds the help text for a documents-section topic.
func documentsHowTo(subject string) string {
	return "Питання по " + subject + " Ви можете направити менеджеру.\n" +
		"Для цього натисніть кнопку «" + CommentKey + "» та надішліть запитання 👇"
}

// buildTree constructs the full topic tree with layouts, help texts and
// SLA targets.
func buildTree() *Node {
	goods := &Node{
		Key: KeyGoods,
		Children: []*Node{
			{
				Key:      KeyGoodsFind,
				SLAHours: 6,
				Response: "Товар може не відображатися з деяких причин, основні з яких:\n" +
					" 🔹 Аптека не надсилає залишки товару\n" +
					" 🔹 Ціна резервування товару вища від ціни в аптеці\n" +
					" 🔹 Відсутня прив'язка товарної позиції\n" +
					" 🔹 Товар заблокований\n" +
					" 🔹 Аптека відключена\n" +
					"Ви можете знайти причину, користуючись інструкцією за посиланням:\n" +
					"У разі, якщо причина не виявлена, надішліть звернення менеджеру, " +
					"натиснувши кнопку «" + CommentKey + "» та вкажіть:\n" +
					" 🔹 Назву товару\n" +
					" 🔹 Виробника\n" +
					" 🔹 Внутрішній код товару\n" +
					" 🔹 Серійний номер аптеки",
			},
			{
				Key:      KeyGoodsAdd,
				SLAHours: 24,
				Response: "Додавання нового товару в каталог можливо " +
					"у разі одержання від заявника інформації про товар в наступному форматі:\n" +
					"Товарна позиція буде введена в каталог, а по факту " +
					"введення картки товару в каталог, Вас повідомлять 🔔",
			},
			{
				Key:      KeyGoodsLink,
				SLAHours: 24,
				Response: "У разі виявлення некоректної прив'язки товару, є можливість її відкоригувати, " +
					"виконавши дії, описані в інструкції за посиланням:\n" +
					"Після проведення прив'язки товару в особистому кабінеті, " +
					"вона проходить модерацію і тільки після цього фіксуються зміни 🪢",
			},
		},
		Rows: [][]string{
			{KeyGoodsFind},
			{KeyGoodsAdd},
			{KeyGoodsLink},
			askRow,
		},
	}

	pharmacies := &Node{
		Key: KeyPharmacies,
		Children: []*Node{
			{
				Key:      KeyPharmaciesFind,
				SLAHours: 6,
				Response: "Припинення відображення аптеки на можливо за таких обставин:\n" +
					" 🔹 Аптека відключена в особистому кабінеті\n" +
					" 🔹 Своєчасно несплачені рахунки\n" +
					" 🔹 Є неотримані/необроблені замовлення\n" +
					" 🔹 Відсутнє оновлення інформації по залишкам товарів і цін більше доби\n" +
					"Самостійно виявити причину можливо, користуючись інструкцією за посиланням:\n" +
					"Якщо не знайшли відповіді, звертайтесь до менеджера:\n" +
					"Натисніть кнопку «" + CommentKey + "» та вкажіть СЕРІЙНИЙ НОМЕР аптеки 👇",
			},
			{
				Key:      KeyPharmaciesReply,
				SLAHours: 4,
				Response: "Натисніть кнопку «" + CommentKey + "» та впишіть відповідь на звернення 👇",
			},
			{
				Key:      KeyPharmaciesAdd,
				SLAHours: 24,
				Response: "Для того, щоб додати нову аптеку 🏥 з метою її подальшої трансляції, " +
					"потрібно виконати дії описані в інструкції за посиланням:\n" +
					"По факту додавання аптеки в реєстр менеджер по роботі з аптечними мережами " +
					"відправить Вам серійний номер цієї аптеки для подальшого вивантаження даних залишків і цін.",
			},
			{
				Key:      KeyPharmaciesSchedule,
				SLAHours: 6,
				Response: "Змінити 📆 графік роботи аптеки або ☎ телефон можливо, " +
					"користуючись інструкцією за посиланням:\n",
			},
			{
				Key:      KeyPharmaciesPhone,
				SLAHours: 24,
				Response: "Змінити 📆 графік роботи аптеки або ☎ телефон можливо, " +
					"користуючись інструкцією за посиланням:\n",
			},
			{
				Key:      KeyPharmaciesMap,
				SLAHours: 24,
				Response: "В разі виявлення помилки щодо розташування аптеки на карті 🗺 " +
					"можливо змінити точку, користуючись інструкцією за посиланням:\n" +
					"Після встановлення нової геолокації в особистому кабінеті, " +
					"зміни проходять перевірку та, після підтвердження менеджером, фіксуються на карті 📍",
			},
			{
				Key:      KeyPharmaciesName,
				SLAHours: 6,
				Response: "Для зміни назви аптеки виконайте дії, вказані в інструкції за посиланням:\n",
			},
			{
				Key:      KeyPharmaciesDisable,
				SLAHours: 4,
				Response: "Відключити аптеку 🚫 від трансляції на сайті можливо самостійно в особистому кабінеті, " +
					"користуючись інструкцією за посиланням:\n" +
					"Якщо аптека відключається на тривалий термін 📆 і в наступному місяці " +
					"не планується робота, обов'язково ПОВІДОМТЕ про це менеджера❗ 👇",
			},
			{
				Key:      KeyPharmaciesStop,
				SLAHours: 2,
				Response: "Для відключення мережі ❌ від трансляції, потрібно передати інформацію менеджеру.\n" +
					"Для цього натисніть кнопку «" + CommentKey + "» " +
					"та обов'язково повідомте причину відключення 👇",
			},
			{
				Key:      KeyPharmaciesClient,
				SLAHours: 6,
				Response: "Вкажіть номер броні та причину необхідності надання номера телефона клієнта 👇",
			},
		},
		Rows: [][]string{
			{KeyPharmaciesFind, KeyPharmaciesReply},
			{KeyPharmaciesAdd, KeyPharmaciesClient},
			{KeyPharmaciesSchedule, KeyPharmaciesPhone},
			{KeyPharmaciesMap, KeyPharmaciesName},
			{KeyPharmaciesDisable},
			{KeyPharmaciesStop},
			askRow,
		},
	}

	documents := &Node{
		Key: KeyDocuments,
		Children: []*Node{
			{
				Key:       KeyDocumentsContracts,
				SLAHours:  24,
				Documents: true,
				Response:  documentsHowTo("договорам"),
			},
			{
				Key:       KeyDocumentsInvoices,
				SLAHours:  6,
				Documents: true,
				Response:  documentsHowTo("рахункам"),
			},
			{
				Key:       KeyDocumentsActs,
				SLAHours:  24,
				Documents: true,
				Response:  documentsHowTo("актам"),
			},
			{
				Key:      KeyDocumentsContact,
				SLAHours: 24,
				Response: "При зміні відповідальної особи, " +
					"прохання надати інформацію про ПІБ, контактний телефон, e-mail нової контактної особи.\n" +
					"Натисніть кнопку «" + CommentKey + "» та введіть інформацію для відправки даних 👇",
			},
		},
		Rows: [][]string{
			{KeyDocumentsContracts},
			{KeyDocumentsInvoices, KeyDocumentsActs},
			{KeyDocumentsContact},
			askRow,
		},
	}

	reports := &Node{
		Key: KeyReports,
		Children: []*Node{
			{
				Key:      KeyReportsLink,
				SLAHours: 24,
				Response: "Детальна інструкція по роботі зі звітом «Товари без прив'язки» " +
					"та опис полів звіту є за посиланням:\n" + reportHowTo,
			},
			{
				Key:      KeyReportsQuality,
				SLAHours: 24,
				Response: "Детальна інструкція по роботі зі звітом «Якість» " +
					"та опис полів звіту є за посиланням:\n" + reportHowTo,
			},
			{
				Key:      KeyReportsCompetitors,
				SLAHours: 24,
				Response: "Детальна інструкція по роботі зі звітом «Оточення» " +
					"та опис полів звіту є за посиланням:\n" + reportHowTo,
			},
			{
				Key:      KeyReportsFinance,
				SLAHours: 24,
				Response: "Детальна інструкція по роботі зі звітом «Фінансовий» " +
					"та опис полів звіту є за посиланням:\n" + reportHowTo,
			},
		},
		Rows: [][]string{
			{KeyReportsLink},
			{KeyReportsQuality, KeyReportsCompetitors, KeyReportsFinance},
			askRow,
		},
	}

	defects := &Node{
		Key: KeyDefects,
		Children: []*Node{
			{
				Key:      KeyDefectsAccount,
				SLAHours: 24,
				Response: "Якщо Ви не можете відкрити сторінку 🖥 особистого кабінету, " +
					"або зафіксовано ⚠ збій в роботі, будь ласка, оформіть заявку в службу підтримки:\n" + reportHowTo,
			},
			{
				Key:      KeyDefectsOrders,
				SLAHours: 6,
				Response: "Якщо в аптеку не надходять вже сформовані клієнтами 🛒 замовлення, " +
					"потрібно звернутись до IT-спеціалістів свого підприємства!\n" +
					"В разі, якщо технічні спеціалісти аптеки не можуть 😞 вирішити питання, " +
					"звертайтесь до менеджера:\n" + reportHowTo,
			},
			{
				Key:      KeyDefectsRests,
				SLAHours: 6,
				Response: "Перевірити статус надходження 📦 залишків можливо, " +
					"виконавши дії згідно інструкціЇ за посиланням:\n" + reportHowTo,
			},
		},
		Rows: [][]string{
			{KeyDefectsAccount},
			{KeyDefectsOrders, KeyDefectsRests},
			askRow,
		},
	}

	return &Node{
		Key:      BackKey,
		Children: []*Node{goods, pharmacies, documents, reports, defects},
		Rows: [][]string{
			{KeyGoods, KeyPharmacies},
			{KeyDocuments, KeyReports},
			{KeyDefects},
		},
	}
}
