package chat

import (
	"encoding/json"
	"fmt"
)

// schemaNotes describes the flight tables in the words the SQL examples use.
// It rides along with the retrieved schema documents in every prompt that
// reasons about the database.
const schemaNotes = `Informasi Terkait Skema:

Table: flight_prices
id: ID unik untuk setiap row
flight_number: nomor penerbangan yang dikombinasikan dengan huruf. contoh GA123
"class": tipe kelas dari penerbangan tsb
base_price: harga sebelum dikenakan pajak
tax: nominal besar pajak
fee: biaya admin yang dikenakan
currency: mata uang yang dipakai
valid_from: waktu awal tersedia
valid_to: waktu akhir tersedia atau kadaluarsanya
created_at: kapan data dibuat
updated_at: kapan data diubah
origin_code: kode penanda tempat pemberangkatan
destination_code: kode penanda tempat tujuan

Table: airports
code: kode 3 huruf yang menandakan suatu bandara
name: nama bandara
city: kota dimana bandara berada
country: negara dimana bandara berada
timezone: waktu setempat bandara
created_at: data dibuat
updated_at: data diubah`

func intentSystemPrompt(schemaContext, currentDate string) string {
	return fmt.Sprintf(`Anda adalah asisten layanan penerbangan yang merangkum maksud dari pertanyaan user.

TANGGAL HARI INI: %s

SCHEMA DATABASE:
%s

%s

TUGAS:
Baca riwayat percakapan dan pertanyaan terakhir user, lalu rangkum maksudnya sebagai satu deskripsi permintaan data yang lengkap dan berdiri sendiri. Sertakan rute, tanggal, kelas, dan kriteria harga yang sudah disebut pada percakapan sebelumnya.

FORMAT OUTPUT:
QUERY_INTENT: <deskripsi permintaan data>`, currentDate, schemaContext, schemaNotes)
}

func sqlPrompt(schemaContext, question, currentDate string) string {
	return fmt.Sprintf(`Anda adalah expert SQL developer yang akan mengkonversi pertanyaan bahasa natural ke SQL query. Kamu akan menggunakan PostgreSQL untuk melakukan task ini

TANGGAL HARI INI: %[1]s

SCHEMA DATABASE:
%[2]s

%[3]s

ATURAN PENTING:
1. Gunakan HANYA tabel dan kolom yang ada di schema
2. Pastikan sintaks PostgreSQL yang benar
3. Gunakan JOIN yang tepat untuk relasi antar tabel
4. Untuk agregasi, gunakan GROUP BY yang sesuai
5. Ketika user bertanya mengenai ketersediaan pada tanggal tertentu, gunakan kolom valid_from dengan inputan sesuai dengan jadwal yang diminta user dan valid_to hingga satu bulan ke depan:
- untuk informasi waktu saat ini, gunakan tanggal hari ini yaitu %[1]s
- jika user menyebutkan tanggal saja, gunakan %[1]s sebagai acuan tahun dan bulan
- jika user tidak menyebutkan tanggal, berikan informasi tiket yang valid_from lebih besar atau sama dengan %[1]s
6. Gunakan alias tabel untuk kemudahan baca
7. Return HANYA SQL query tanpa penjelasan tambahan, tanda markdown, atau format lainnya. HANYA berikan SQL query.
8. Berikan query yang terbaik dan pastikan dapat dijalankan ketika mengeksekusi query.
9. HANYA kembalikan SQL query saja tanpa awalan "JAWABAN:" atau teks lainnya
10. Langsung kembalikan query SQL tanpa tambahan apapun

CONTOH QUESTION dan SQL QUERY:
question: Tampilkan semua TIKET
answer: SELECT * FROM flight_prices;

question: Tampilkan tiket dari CGK ke DPS
answer: SELECT fp.flight_number, fp.class, fp.base_price, fp.tax, fp.fee, fp.currency, fp.valid_from, fp.valid_to, fp.origin_code, fp.destination_code, a1.name AS origin_name, a2.name AS destination_name FROM flight_prices fp INNER JOIN airports a1 ON fp.origin_code = a1.code INNER JOIN airports a2 ON fp.destination_code = a2.code WHERE fp.origin_code = 'CGK' AND fp.destination_code = 'DPS';

question: Apakah ada jadwal pesawat dari CGK ke DPS pada tanggal 7 Agustus?
answer: SELECT fp.flight_number, fp.class, fp.base_price, fp.tax, fp.fee, fp.currency, fp.valid_from, fp.valid_to, fp.origin_code, fp.destination_code, a1.name AS origin_name, a2.name AS destination_name FROM flight_prices fp INNER JOIN airports a1 ON fp.origin_code = a1.code INNER JOIN airports a2 ON fp.destination_code = a2.code WHERE fp.origin_code = 'CGK' AND fp.destination_code = 'DPS' AND fp.valid_from >= '2025-08-07' AND valid_to <= '2025-09-07';

question: Apakah ada jadwal pesawat dari Jakarta ke Bali pada tanggal 7 Agustus?
answer: SELECT fp.flight_number, fp.class, fp.base_price, fp.tax, fp.fee, fp.currency, fp.valid_from, fp.valid_to, fp.origin_code, fp.destination_code, a1.name AS origin_name, a2.name AS destination_name FROM flight_prices fp INNER JOIN airports a1 ON fp.origin_code = a1.code INNER JOIN airports a2 ON fp.destination_code = a2.code WHERE a1.city = 'Jakarta' AND a2.city = 'Denpasar' AND fp.valid_from >= '2025-08-07' AND valid_to <= '2025-09-07';

question: %[4]s
answer:`, currentDate, schemaContext, schemaNotes, question)
}

func languagePrompt(text string) string {
	return fmt.Sprintf(`You are a language detection model. Your task is to identify the language of the given text.

Identify the language of the following text and respond with the language name only (e.g., English, Spanish, French, etc.):

Text: Halo siapa nama kamu?
Answer: Indonesian

Text: Hello What is your name?
Answer: English

Text: %s
Answer:`, text)
}

func reportSystemPrompt(rawData, language string) string {
	return fmt.Sprintf(`You are a friendly and engaging reporting assistant.
Your job is to turn the raw result into a smooth, natural, slightly playful explanation that encourages the user to explore further.

RAW ANSWER / DATA:
%s

TASK:
1. Rewrite the answer in a friendly, conversational tone, as if you are explaining to a friend.
2. Keep all numbers and facts accurate. Do not invent data.
3. Use simple and clear language. Add a little personality to make it feel fun and approachable.
4. If data is empty, respond politely and encourage the user to try asking something else.
5. End your answer with a light, engaging follow-up question that invites the user to continue exploring.

RESPONSE LANGUAGE:
- %s

OUTPUT:
Return only the final response, no preambles or labels.`, rawData, language)
}

func errorReportPrompt(question, errorMessage string) string {
	return fmt.Sprintf(`Kamu adalah data analyst yang ahli dan bekerja untuk suatu pelayanan penerbangan. Kamu akan diberikan suatu error log dan pertanyaan dari user.
Berikan informasi kepada user mengapa kesalahan dapat terjadi. Bisa jadi user bertanya di luar batas pengetahuanmu.

contoh:
question: siapa presiden singapura
answer: maaf kami tidak mengetahui jawaban mengenai permintaan anda. silahkan bertanya seputar tiket dan penerbangan yang kamu mau tahu ya.

INSTRUKSI:
1. JAWAB pertanyaan user secara LANGSUNG. Kamu boleh memodifikasi jawaban dengan lebih natural dan enak dibaca oleh user

question: %s
error message: %s`, question, errorMessage)
}

// formatRows renders query results for prompt embedding. JSON keeps column
// names attached to their values and is stable across runs.
func formatRows(rows []map[string]any) string {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Sprintf("%v", rows)
	}
	return string(data)
}
